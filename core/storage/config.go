package storage

// Config holds configuration for the storage provider.
type Config struct {
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the S3 bucket holding file content. File buckets become key prefixes inside it.
	Bucket string `mapstructure:"bucket" default:"gridfs"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// PartSizeMB is the multipart upload part size, i.e. the chunk size of stored files.
	PartSizeMB int `mapstructure:"part_size_mb" default:"16"`
}

// PartSize returns the multipart part size in bytes, never below the S3 minimum of 5 MiB.
func (c Config) PartSize() uint64 {
	mb := c.PartSizeMB
	if mb < 5 {
		mb = 5
	}
	return uint64(mb) * 1024 * 1024
}
