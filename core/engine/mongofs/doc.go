// Package mongofs implements the storage engine on MongoDB GridFS.
//
// Each configured bucket maps to a GridFS bucket (<name>.files / <name>.chunks)
// in one database. Filters are passed to the server as-is, with slice clauses
// rewritten to $in.
//
// # Usage
//
//	client, err := mongofs.Connect(ctx, cfg.Mongo)
//	eng := mongofs.New(client.Database(cfg.Mongo.Database), 0)
//	bucket, err := eng.OpenBucket(ctx, "client-files")
package mongofs
