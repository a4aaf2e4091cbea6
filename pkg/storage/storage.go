// Package storage abstracts the blob stores used for cloud snapshot backup.
// Providers are config-driven; the backup client only sees Storager.
package storage

import (
	"github.com/haierkeys/offline-note-sync-service/pkg/code"
	"github.com/haierkeys/offline-note-sync-service/pkg/storage/aliyun_oss"
	"github.com/haierkeys/offline-note-sync-service/pkg/storage/aws_s3"
	"github.com/haierkeys/offline-note-sync-service/pkg/storage/cloudflare_r2"
	"github.com/haierkeys/offline-note-sync-service/pkg/storage/local_fs"
	"github.com/haierkeys/offline-note-sync-service/pkg/storage/webdav"
)

type Type = string

const OSS Type = "oss"
const R2 Type = "r2"
const S3 Type = "s3"
const LOCAL Type = "localfs"
const WebDAV Type = "webdav"

var StorageTypeMap = map[Type]bool{
	OSS:    true,
	R2:     true,
	S3:     true,
	LOCAL:  true,
	WebDAV: true,
}

// Config is the unified storage configuration; the active Type decides
// which fields matter.
type Config struct {
	Type Type `yaml:"type"`

	// Common settings
	IsEnabled  bool   `yaml:"is-enable"`
	CustomPath string `yaml:"custom-path"`

	// Cloud storage (S3 / OSS / R2; Endpoint also covers S3-compatible
	// deployments such as MinIO)
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	AccountID       string `yaml:"account-id"` // Cloudflare R2 specific

	// WebDAV
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Path     string `yaml:"path"`

	// Local FS
	SavePath string `yaml:"save-path"`
}

// Storager is the minimal blob contract the backup mirror needs. GetContent
// reports absence through ok=false rather than an error so callers can treat
// "no snapshot yet" as a normal state.
type Storager interface {
	SendContent(pathKey string, content []byte) (string, error)
	GetContent(pathKey string) (content []byte, ok bool, err error)
	Delete(pathKey string) error
}

func NewClient(config *Config) (Storager, error) {
	if config == nil {
		return nil, code.ErrorInvalidStorageType
	}

	switch config.Type {
	case LOCAL:
		return local_fs.NewClient(&local_fs.Config{
			IsEnabled:  config.IsEnabled,
			SavePath:   config.SavePath,
			CustomPath: config.CustomPath,
		})
	case OSS:
		return aliyun_oss.NewClient(&aliyun_oss.Config{
			IsEnabled:       config.IsEnabled,
			Endpoint:        config.Endpoint,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		})
	case R2:
		return cloudflare_r2.NewClient(&cloudflare_r2.Config{
			IsEnabled:       config.IsEnabled,
			AccountID:       config.AccountID,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		})
	case S3:
		return aws_s3.NewClient(&aws_s3.Config{
			IsEnabled:       config.IsEnabled,
			Endpoint:        config.Endpoint,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		})
	case WebDAV:
		return webdav.NewClient(&webdav.Config{
			IsEnabled:  config.IsEnabled,
			Endpoint:   config.Endpoint,
			Path:       config.Path,
			User:       config.User,
			Password:   config.Password,
			CustomPath: config.CustomPath,
		})
	}
	return nil, code.ErrorInvalidStorageType
}
