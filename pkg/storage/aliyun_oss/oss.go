// Package aliyun_oss stores blobs in an Aliyun OSS bucket.
package aliyun_oss

import (
	"bytes"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	pkgerrors "github.com/pkg/errors"
)

type Config struct {
	IsEnabled       bool   `yaml:"is-enable"`
	Endpoint        string `yaml:"endpoint"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
}

type OSS struct {
	Bucket *oss.Bucket
	Config *Config
}

var clients = make(map[string]*OSS)

func NewClient(conf *Config) (*OSS, error) {
	cacheKey := conf.AccessKeyID + "#" + conf.BucketName
	if clients[cacheKey] != nil {
		return clients[cacheKey], nil
	}

	client, err := oss.New(conf.Endpoint, conf.AccessKeyID, conf.AccessKeySecret)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "aliyun_oss")
	}

	bucket, err := client.Bucket(conf.BucketName)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "aliyun_oss")
	}

	clients[cacheKey] = &OSS{
		Bucket: bucket,
		Config: conf,
	}
	return clients[cacheKey], nil
}

func (o *OSS) key(pathKey string) string {
	if o.Config.CustomPath != "" {
		return strings.TrimSuffix(o.Config.CustomPath, "/") + "/" + pathKey
	}
	return pathKey
}

func (o *OSS) SendContent(pathKey string, content []byte) (string, error) {
	if err := o.Bucket.PutObject(o.key(pathKey), bytes.NewReader(content)); err != nil {
		return "", pkgerrors.Wrap(err, "aliyun_oss")
	}
	return pathKey, nil
}

func (o *OSS) GetContent(pathKey string) ([]byte, bool, error) {
	body, err := o.Bucket.GetObject(o.key(pathKey))
	if err != nil {
		var svcErr oss.ServiceError
		if pkgerrors.As(err, &svcErr) && svcErr.StatusCode == 404 {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Wrap(err, "aliyun_oss")
	}
	defer body.Close()

	content, err := io.ReadAll(body)
	if err != nil {
		return nil, false, pkgerrors.Wrap(err, "aliyun_oss")
	}
	return content, true, nil
}

func (o *OSS) Delete(pathKey string) error {
	if err := o.Bucket.DeleteObject(o.key(pathKey)); err != nil {
		return pkgerrors.Wrap(err, "aliyun_oss")
	}
	return nil
}
