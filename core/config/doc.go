// Package config provides configuration management for the GridFS manager.
//
// It utilizes Viper for loading configuration from an optional config.yaml,
// a .env file and environment variables. Defaults come from the `default`
// struct tags of each section.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Log: Logging level and format
//   - GridFS: bucket names, unique indexes, engine, chunk size, fetch concurrency
//   - Mongo: connection for the mongo engine
//   - Storage: S3/MinIO credentials and bucket for the objectstore engine
//   - Database: catalog database (MySQL or SQLite) for the objectstore engine
//
// Bucket names can be set from the environment as a comma separated list
// (GRIDFS_BUCKET_NAMES=avatars,client-files). Unique indexes are lists of
// objects and are read from config.yaml only:
//
//	gridfs:
//	  bucket_names: [avatars, client-files]
//	  indexes:
//	    - bucket_name: client-files
//	      properties: [clientId, position]
//	      filename: true
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
