package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dkravets/adminboard/internal/common"
	sc "github.com/dkravets/adminboard/internal/server/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const docPrefix = "users/"

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// s3API is the subset of the S3 client the document store uses.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3DocumentStore keeps one JSON document per user at users/<uid>.json.
// Listing pages through keys in UID order, which is what makes the
// last_uid cursor stable across requests.
type S3DocumentStore struct {
	client s3API
	bucket string
}

// NewS3DocumentStore builds a store over an S3-compatible backend
// (MinIO in development) using static credentials and a base endpoint.
func NewS3DocumentStore(ctx context.Context, cfg *sc.Config) (*S3DocumentStore, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3DocumentStore{client: client, bucket: cfg.S3Bucket}, nil
}

func docKey(uid string) string {
	return docPrefix + uid + ".json"
}

func (s *S3DocumentStore) Put(ctx context.Context, user User) error {
	body, err := json.Marshal(user)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(docKey(user.UID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("document store put: %w", err)
	}
	return nil
}

func (s *S3DocumentStore) Get(ctx context.Context, uid string) (*User, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(docKey(uid)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("document store get: %w", err)
	}
	defer out.Body.Close()

	return decodeUser(out.Body)
}

func (s *S3DocumentStore) Delete(ctx context.Context, uid string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(docKey(uid)),
	})
	if err != nil {
		return fmt.Errorf("document store delete: %w", err)
	}
	return nil
}

func (s *S3DocumentStore) List(ctx context.Context, limit int, lastUID, status string) (*Page, error) {
	if status == "all" {
		status = ""
	}

	page := &Page{Users: []User{}}
	startAfter := ""
	if lastUID != "" {
		startAfter = docKey(lastUID)
	}

	for len(page.Users) < limit {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:     aws.String(s.bucket),
			Prefix:     aws.String(docPrefix),
			StartAfter: aws.String(startAfter),
			MaxKeys:    aws.Int32(int32(limit)),
		})
		if err != nil {
			return nil, fmt.Errorf("document store list: %w", err)
		}
		if len(out.Contents) == 0 {
			break
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			startAfter = key

			uid := strings.TrimSuffix(path.Base(key), ".json")
			user, err := s.Get(ctx, uid)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					continue // deleted between list and get
				}
				return nil, err
			}
			if status != "" && user.Status != status {
				continue
			}

			page.Users = append(page.Users, *user)
			page.LastUID = user.UID
			if len(page.Users) == limit {
				return page, nil
			}
		}
	}

	return page, nil
}

func decodeUser(r io.Reader) (*User, error) {
	user := &User{}
	if err := json.NewDecoder(r).Decode(user); err != nil {
		return nil, fmt.Errorf("document store decode: %w", err)
	}
	return user, nil
}
