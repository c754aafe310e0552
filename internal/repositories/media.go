package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	appconfig "github.com/freespaces/server/internal/config"
	"github.com/google/uuid"
)

// Media storage (Cloudflare R2, S3-compatible) for avatars and post
// featured images. Uploads go straight from the browser via presigned PUT
// URLs; the server only hands out URLs and verifies the object landed.
var (
	MediaClient   *s3.Client
	MediaBucket   string
	mediaBaseURL  string
	mediaEndpoint string
)

// InitMedia initializes the R2 client using static credentials and the
// account-scoped endpoint. The account id and bucket name are required since
// every generated URL embeds them.
func InitMedia(cfg appconfig.R2Config) error {
	if cfg.AccountID == "" || cfg.BucketName == "" {
		return errors.New("media storage requires R2_ACCOUNT_ID and R2_BUCKET_NAME")
	}

	MediaBucket = cfg.BucketName
	mediaBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	mediaEndpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:      cfg.Region,
	}

	MediaClient = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(mediaEndpoint)
		o.UsePathStyle = true
	})

	log.Println("Successfully initialized media storage client")

	return nil
}

// AvatarKey builds the object key for a user's avatar upload.
func AvatarKey(userID uuid.UUID, ext string) string {
	return fmt.Sprintf("avatars/%s%s", userID, ext)
}

// FeaturedImageKey builds the object key for a post featured image. The id
// is minted by the caller before the post exists.
func FeaturedImageKey(imageID uuid.UUID, ext string) string {
	return fmt.Sprintf("post-images/%s%s", imageID, ext)
}

// MediaURL returns the public URL an object key is served from.
func MediaURL(key string) string {
	if key == "" {
		return ""
	}
	return mediaBaseURL + "/" + key
}

// PresignMediaUpload creates a presigned URL for uploading an object.
func PresignMediaUpload(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	presigner := s3.NewPresignClient(MediaClient)
	req, err := presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(MediaBucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// MediaObjectExists checks whether an object key landed in the bucket.
// Returns false without error when the object simply isn't there.
func MediaObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := MediaClient.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(MediaBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *s3types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
