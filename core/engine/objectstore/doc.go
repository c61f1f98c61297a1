// Package objectstore implements the storage engine on S3-compatible storage.
//
// File content is streamed into one S3 bucket as a multipart upload whose part
// size acts as the chunk size; each file bucket is a key prefix ("<bucket>/<id>").
// File records (name, length, checksum, metadata) live in a SQL catalog table
// managed with GORM, which is what Find queries.
//
// Filename, _id and string, number or boolean metadata clauses are pushed down
// to SQL; metadata equality goes through the indexed gridfs_properties table.
// Anything else is evaluated with engine.Select on the loaded rows, and the SQL
// limit is only applied when nothing was left for Select.
//
// # Usage
//
//	client, _ := storage.NewClient(cfg.Storage)
//	db, _ := database.Connect(cfg.Database)
//	eng, err := objectstore.New(ctx, client, db, cfg.Storage)
package objectstore
