package writer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "leaderflow/config"
	"leaderflow/logger"
	"leaderflow/models"
)

// S3Mirror uploads each snapshot to an S3 bucket alongside the local file,
// so a CDN or static site can serve the leaderboards without touching the
// ingestion host.
type S3Mirror struct {
	client *s3.Client
	bucket string
	prefix string
	log    *logger.Log
}

// NewS3Mirror creates the mirror from storage configuration. Static
// credentials from the config take precedence; otherwise the default AWS
// credential chain applies.
func NewS3Mirror(cfg appconfig.S3Config) (*S3Mirror, error) {
	log := logger.GetLogger()
	ctx := context.Background()

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	creds, err := awsCfg.Credentials.Retrieve(ctx)
	if err != nil || !creds.HasKeys() {
		return nil, fmt.Errorf("aws credentials not found")
	}

	log.WithComponent("s3_mirror").WithFields(logger.Fields{
		"region": cfg.Region,
		"bucket": cfg.Bucket,
		"prefix": cfg.Prefix,
	}).Debug("s3 mirror initialized")

	return &S3Mirror{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		log:    log,
	}, nil
}

// Upload mirrors one snapshot to the bucket under
// <prefix>/<source>-leaderboard.json.
func (m *S3Mirror) Upload(ctx context.Context, snap *models.Snapshot) error {
	log := m.log.WithComponent("s3_mirror").WithSource(snap.Metadata.Source).WithFields(logger.Fields{
		"bucket": m.bucket,
	})

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	key := path.Join(m.prefix, snap.Metadata.Source+"-leaderboard.json")
	if _, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(m.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("max-age=60"),
	}); err != nil {
		log.WithError(err).Error("failed to upload snapshot")
		return fmt.Errorf("put object %s: %w", key, err)
	}

	logger.IncrementMirrorWrite(int64(len(data)))
	m.log.LogMetric("s3_mirror", "snapshots_uploaded", 1, "counter", logger.Fields{
		"source": snap.Metadata.Source,
	})
	log.WithFields(logger.Fields{"key": key, "bytes": len(data)}).Info("snapshot mirrored to S3")

	return nil
}
