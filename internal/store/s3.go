package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/roomcheck/roomcheck/internal/fault"
	"github.com/roomcheck/roomcheck/internal/inspection"
)

// S3Store is the object-storage backend, for deployments where inspection
// media should not live on the service host.
type S3Store struct {
	client         *s3.Client
	bucket         string
	publicEndpoint string
}

type S3Config struct {
	Endpoint       string
	PublicEndpoint string // Used in playback URLs; falls back to Endpoint if empty
	Bucket         string
	AccessKey      string
	SecretKey      string
	Region         string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Region == "" {
		cfg.Region = "eu-central-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	publicEndpoint := cfg.Endpoint
	if cfg.PublicEndpoint != "" {
		publicEndpoint = cfg.PublicEndpoint
	}

	return &S3Store{
		client:         client,
		bucket:         cfg.Bucket,
		publicEndpoint: strings.TrimSuffix(publicEndpoint, "/"),
	}, nil
}

func (s *S3Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func analysisKey(base string) string { return "videos/" + base + ".json" }
func videoKey(base string) string    { return "videos/" + base + ".mp4" }

func (s *S3Store) VideoURL(base string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicEndpoint, s.bucket, videoKey(base))
}

// SaveAnalysis uses a conditional put so the duplicate-name race resolves on
// the storage side, mirroring the disk store's exclusive create.
func (s *S3Store) SaveAnalysis(ctx context.Context, base string, analysis *inspection.Analysis) error {
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis %s: %w", base, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(analysisKey(base)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		if strings.Contains(err.Error(), "PreconditionFailed") {
			return fault.Conflictf("a file with the name %s.mp4 already exists", base)
		}
		return fmt.Errorf("put analysis %s: %w", base, err)
	}
	return nil
}

func (s *S3Store) SaveVideo(ctx context.Context, base string, srcPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open transcoded video %s: %w", srcPath, err)
	}
	defer f.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(videoKey(base)),
		Body:        f,
		ContentType: aws.String("video/mp4"),
	})
	if err != nil {
		return fmt.Errorf("put video %s: %w", base, err)
	}
	return nil
}

func (s *S3Store) AnalysisExists(ctx context.Context, base string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(analysisKey(base)),
	})
	if err == nil {
		return true, nil
	}
	if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "404") {
		return false, nil
	}
	return false, fmt.Errorf("head analysis %s: %w", base, err)
}

// Remove deletes the analysis document and its stored video. S3 deletes are
// idempotent, so existence is checked first to surface a not-found error.
func (s *S3Store) Remove(ctx context.Context, base string) error {
	exists, err := s.AnalysisExists(ctx, base)
	if err != nil {
		return err
	}
	if !exists {
		return fault.NotFoundf("no analysis found for %s", base)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(analysisKey(base)),
	})
	if err != nil {
		return fmt.Errorf("delete analysis %s: %w", base, err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(videoKey(base)),
	})
	if err != nil {
		slog.Warn("store: analysis removed but video remains", "base", base, "error", err)
	}
	return nil
}

func (s *S3Store) LoadAnalyses(ctx context.Context) ([]inspection.Analysis, error) {
	var analyses []inspection.Analysis
	var continuation *string

	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String("videos/"),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("list analyses: %w", err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			analysis, err := s.getAnalysis(ctx, key)
			if err != nil {
				slog.Warn("store: skipping unreadable analysis", "key", key, "error", err)
				continue
			}
			analyses = append(analyses, *analysis)
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		continuation = out.NextContinuationToken
	}
	return analyses, nil
}

func (s *S3Store) getAnalysis(ctx context.Context, key string) (*inspection.Analysis, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}

	var analysis inspection.Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("parse analysis: %w", err)
	}
	return &analysis, nil
}
