package mongofs

// Config holds configuration for the MongoDB connection.
type Config struct {
	// URI is the MongoDB connection string.
	URI string `mapstructure:"uri" default:"mongodb://localhost:27017"`
	// Database is the database holding the GridFS collections.
	Database string `mapstructure:"database" default:"gridfs"`
	// TimeoutSeconds bounds connection setup and server selection.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
