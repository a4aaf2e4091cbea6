// Package aws_s3 stores blobs in an S3 bucket. An explicit Endpoint also
// covers S3-compatible deployments such as MinIO.
package aws_s3

import (
	"bytes"
	"context"
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
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
}

type S3 struct {
	S3Client *s3.Client
	Config   *Config
}

var clients = make(map[string]*S3)

func NewClient(conf *Config) (*S3, error) {
	cacheKey := conf.AccessKeyID + "#" + conf.BucketName
	if clients[cacheKey] != nil {
		return clients[cacheKey], nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.AccessKeySecret, "")),
		config.WithRegion(conf.Region),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "aws_s3")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
			o.UsePathStyle = true
		}
	})

	clients[cacheKey] = &S3{
		S3Client: client,
		Config:   conf,
	}
	return clients[cacheKey], nil
}

func (s *S3) key(pathKey string) string {
	if s.Config.CustomPath != "" {
		return strings.TrimSuffix(s.Config.CustomPath, "/") + "/" + pathKey
	}
	return pathKey
}

func (s *S3) SendContent(pathKey string, content []byte) (string, error) {
	_, err := s.S3Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket: aws.String(s.Config.BucketName),
		Key:    aws.String(s.key(pathKey)),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return "", pkgerrors.Wrap(err, "aws_s3")
	}
	return pathKey, nil
}

func (s *S3) GetContent(pathKey string) ([]byte, bool, error) {
	out, err := s.S3Client.GetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(s.Config.BucketName),
		Key:    aws.String(s.key(pathKey)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if pkgerrors.As(err, &noKey) {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Wrap(err, "aws_s3")
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, pkgerrors.Wrap(err, "aws_s3")
	}
	return content, true, nil
}

func (s *S3) Delete(pathKey string) error {
	_, err := s.S3Client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.Config.BucketName),
		Key:    aws.String(s.key(pathKey)),
	})
	if err != nil {
		return pkgerrors.Wrap(err, "aws_s3")
	}
	return nil
}
