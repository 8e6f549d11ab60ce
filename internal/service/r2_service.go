package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/postdeckhq/postdeck/configs"
	"github.com/postdeckhq/postdeck/internal/models"
	"github.com/postdeckhq/postdeck/pkg/utils"
)

// R2Service archives the image previews of finalized posts to Cloudflare
// R2. It sits behind the publish/delivery callbacks and is optional.
type R2Service struct {
	config cfg.Config
}

func NewR2Service(cfg cfg.Config) *R2Service {
	return &R2Service{config: cfg}
}

func (r *R2Service) Enabled() bool {
	return r.config.R2.AccountID != "" && r.config.R2.BucketName != ""
}

func (r *R2Service) r2Client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.R2.AccessKey, r.config.R2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.R2.AccountID))
	}), nil
}

// ArchivePost uploads each preview of the post under <post id>/<index>.
func (r *R2Service) ArchivePost(ctx context.Context, post models.Post) error {
	client, err := r.r2Client(ctx)
	if err != nil {
		return err
	}

	for i, preview := range post.Images {
		mime, data, err := utils.ParseDataURL(preview)
		if err != nil {
			slog.Info("skipping non-local preview", "post_id", post.ID, "index", i)
			continue
		}

		input := &s3.PutObjectInput{
			Bucket:      aws.String(r.config.R2.BucketName),
			Key:         aws.String(fmt.Sprintf("%s/%d", post.ID, i)),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(mime),
		}
		if _, err := client.PutObject(ctx, input); err != nil {
			slog.Info(err.Error())
			return fmt.Errorf("error archiving image %d for post %s: %w", i, post.ID, err)
		}
	}

	return nil
}
