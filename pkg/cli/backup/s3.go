/* Copyright 2025 SolarCareer Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package backup

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
)

const defaultRegion = "us-east-1"

// S3Config holds the settings of an S3 destination. Credentials fall back
// to the default AWS chain when the keys are empty.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string

	// HTTPClient overrides the transport of the S3 client
	HTTPClient *http.Client
}

// S3Destination keeps backups as objects in an S3 compatible bucket
type S3Destination struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 builds an S3 destination
func NewS3(ctx context.Context, cfg S3Config) (*S3Destination, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		provider := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		opts = append(opts, config.WithCredentialsProvider(provider))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading the aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &S3Destination{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Name returns the name of the destination
func (d *S3Destination) Name() string {
	return "s3://" + path.Join(d.bucket, d.prefix)
}

func (d *S3Destination) key(name string) string {
	if d.prefix == "" {
		return name
	}

	return d.prefix + "/" + name
}

// Put uploads a backup
func (d *S3Destination) Put(ctx context.Context, name string, data []byte) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(d.bucket),
		Key:           aws.String(d.key(name)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrapf(err, "putting %s", name)
	}

	return nil
}

// Get downloads a backup
func (d *S3Destination) Get(ctx context.Context, name string) ([]byte, error) {
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}

		return nil, errors.Wrapf(err, "getting %s", name)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}

	return b, nil
}

// List returns the names of the backups under the prefix, sorted
func (d *S3Destination) List(ctx context.Context) ([]string, error) {
	prefix := ""
	if d.prefix != "" {
		prefix = d.prefix + "/"
	}

	input := &s3.ListObjectsV2Input{Bucket: aws.String(d.bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	ret := []string{}
	for {
		out, err := d.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, errors.Wrap(err, "listing objects")
		}

		for _, obj := range out.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			ret = append(ret, name)
		}

		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		input.ContinuationToken = out.NextContinuationToken
	}

	sort.Strings(ret)

	return ret, nil
}
