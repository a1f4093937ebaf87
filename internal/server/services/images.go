package services

import (
	"context"
	"fmt"
	"time"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/agahlya1812/memoboost/internal/logging"
	sc "github.com/agahlya1812/memoboost/internal/server/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	PresignExpiry = 15 * time.Minute

	MsgImagesDisabled = "image storage is not configured"
	MsgNoImage        = "card has no image"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ImageUpload tells the client where to PUT the picture of a card.
type ImageUpload struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ImageService hands out presigned object storage URLs for card pictures.
// Uploads and downloads go straight between the client and the bucket.
type ImageService struct {
	cards  *CardService
	config *sc.Config
	log    logging.Logger
}

func NewImageService(cards *CardService, cfg *sc.Config, log logging.Logger) *ImageService {
	return &ImageService{cards: cards, config: cfg, log: log.With("module", "images")}
}

func (s *ImageService) Enabled() bool {
	return s.config.ImagesEnabled()
}

// ImageKey builds the object key for a new picture of cardID.
func ImageKey(userID, cardID string) string {
	return fmt.Sprintf("users/%s/cards/%s/%s", userID, cardID, uuid.New())
}

func (s *ImageService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// UploadURL presigns a PUT for a fresh key and attaches that key to the card.
func (s *ImageService) UploadURL(ctx context.Context, userID, cardID, contentType string) (*ImageUpload, error) {
	if !s.Enabled() {
		return nil, common.NewError(common.ErrorUnavailable, MsgImagesDisabled)
	}

	if _, err := s.cards.Get(ctx, userID, cardID); err != nil {
		return nil, err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnavailable, err)
	}

	bucket := s.config.S3Bucket
	key := ImageKey(userID, cardID)
	in := &s3.PutObjectInput{Bucket: &bucket, Key: &key}
	if contentType != "" {
		in.ContentType = &contentType
	}

	req, err := presignPutObject(presignClient, ctx, in, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnavailable, err)
	}

	if _, err := s.cards.SetImage(ctx, userID, cardID, key); err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "image upload presigned", "user_id", userID, "card_id", cardID)
	return &ImageUpload{Key: key, URL: req.URL, ExpiresAt: now().Add(PresignExpiry)}, nil
}

// ViewURL presigns a GET for the card's current picture.
func (s *ImageService) ViewURL(ctx context.Context, userID, cardID string) (string, error) {
	if !s.Enabled() {
		return "", common.NewError(common.ErrorUnavailable, MsgImagesDisabled)
	}

	card, err := s.cards.Get(ctx, userID, cardID)
	if err != nil {
		return "", err
	}
	if card.ImageKey == "" {
		return "", notFound(MsgNoImage)
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorUnavailable, err)
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &card.ImageKey,
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorUnavailable, err)
	}

	return req.URL, nil
}
