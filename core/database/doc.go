// Package database handles connections to the file catalog database.
//
// It wraps GORM and configures either MySQL or SQLite based on the application's
// configuration. The objectstore engine keeps its file records here while file
// content lives in S3/MinIO.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
