// Package cloudflare_r2 stores blobs in a Cloudflare R2 bucket through the
// S3-compatible API.
package cloudflare_r2

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	pkgerrors "github.com/pkg/errors"
)

type Config struct {
	IsEnabled       bool   `yaml:"is-enable"`
	AccountID       string `yaml:"account-id"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
}

type R2 struct {
	S3Client *s3.Client
	Config   *Config
}

var clients = make(map[string]*R2)

func NewClient(conf *Config) (*R2, error) {
	cacheKey := conf.AccountID + "#" + conf.BucketName
	if clients[cacheKey] != nil {
		return clients[cacheKey], nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.AccessKeySecret, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "cloudflare_r2")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", conf.AccountID))
	})

	clients[cacheKey] = &R2{
		S3Client: client,
		Config:   conf,
	}
	return clients[cacheKey], nil
}

func (r *R2) key(pathKey string) string {
	if r.Config.CustomPath != "" {
		return strings.TrimSuffix(r.Config.CustomPath, "/") + "/" + pathKey
	}
	return pathKey
}

func (r *R2) SendContent(pathKey string, content []byte) (string, error) {
	_, err := r.S3Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket: aws.String(r.Config.BucketName),
		Key:    aws.String(r.key(pathKey)),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return "", pkgerrors.Wrap(err, "cloudflare_r2")
	}
	return pathKey, nil
}

func (r *R2) GetContent(pathKey string) ([]byte, bool, error) {
	out, err := r.S3Client.GetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(r.Config.BucketName),
		Key:    aws.String(r.key(pathKey)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if pkgerrors.As(err, &noKey) {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Wrap(err, "cloudflare_r2")
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, pkgerrors.Wrap(err, "cloudflare_r2")
	}
	return content, true, nil
}

func (r *R2) Delete(pathKey string) error {
	_, err := r.S3Client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(r.Config.BucketName),
		Key:    aws.String(r.key(pathKey)),
	})
	if err != nil {
		return pkgerrors.Wrap(err, "cloudflare_r2")
	}
	return nil
}
