// Package spaces serves course material out of DigitalOcean Spaces
// (S3-compatible). Content is private; enrolled users get short-lived
// presigned URLs.
package spaces

import (
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// DefaultURLExpiry is how long a presigned content URL stays valid
const DefaultURLExpiry = 15 * time.Minute

// ErrMissingConfig is returned when Spaces credentials are absent
var ErrMissingConfig = errors.New("spaces access key, secret, bucket and endpoint are required")

// Client handles Spaces operations for course content
type Client struct {
	s3Client *s3.S3
	bucket   string
}

// Config holds configuration for the Spaces client
type Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
}

// NewClient creates a new Spaces client
func NewClient(config Config) (*Client, error) {
	if config.AccessKey == "" || config.SecretKey == "" || config.Bucket == "" || config.Endpoint == "" {
		return nil, ErrMissingConfig
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return &Client{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
	}, nil
}

// PresignedContentURL generates a temporary download URL for a course
// content object
func (c *Client) PresignedContentURL(key string, expiration time.Duration) (string, error) {
	if expiration <= 0 {
		expiration = DefaultURLExpiry
	}

	req, _ := c.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to presign content url: %w", err)
	}
	return url, nil
}
