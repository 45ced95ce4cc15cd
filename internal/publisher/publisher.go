package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"

	"signsight/internal/config"
	"signsight/internal/dao"
	"signsight/internal/utils"
	"signsight/pkg/log"
)

const uploadTimeout = 30 * time.Second

// Publisher mirrors processed videos to object storage and announces them on
// an NSQ topic. Either side is skipped when disabled in config.
type Publisher struct {
	s3          config.S3Config
	nsqTopic    string
	minioCli    *minio.Client
	nsqProducer *nsq.Producer
	logger      *logrus.Entry
}

func NewPublisher(conf *config.Config) (*Publisher, error) {
	p := &Publisher{
		s3:       conf.S3,
		nsqTopic: conf.NSQ.Topic,
		logger:   log.NewLogger().WithField("component", "publisher"),
	}

	if conf.S3.Enabled {
		region := conf.S3.Region
		if region == "" {
			region = "us-east-1"
		}
		minioCli, err := minio.New(conf.S3.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(conf.S3.AccessKeyID, conf.S3.SecretAccessKey, ""),
			Secure: conf.S3.UseSSL,
			Region: region,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client failed: %w", err)
		}
		p.minioCli = minioCli
	}

	if conf.NSQ.Enabled {
		producer, err := nsq.NewProducer(conf.NSQ.NSQDAddr, nsq.NewConfig())
		if err != nil {
			return nil, fmt.Errorf("create NSQ producer failed: %w", err)
		}
		p.nsqProducer = producer
	}

	return p, nil
}

func (p *Publisher) Enabled() bool {
	return p.minioCli != nil || p.nsqProducer != nil
}

// EnsureBucket creates the configured bucket if it does not exist yet.
func (p *Publisher) EnsureBucket(ctx context.Context) error {
	if p.minioCli == nil {
		return nil
	}
	exists, err := p.minioCli.BucketExists(ctx, p.s3.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", p.s3.Bucket, err)
	}
	if !exists {
		if err := p.minioCli.MakeBucket(ctx, p.s3.Bucket, minio.MakeBucketOptions{Region: p.s3.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", p.s3.Bucket, err)
		}
		p.logger.Infof("bucket %s created", p.s3.Bucket)
	}
	return nil
}

// Publish uploads localPath and sets video.ObjectPath, then sends a
// VideoMessage. It stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, localPath string, video *dao.ProcessedVideo) error {
	if p.minioCli != nil {
		objectPath := ObjectPath(video)
		uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
		err := utils.UploadFileToMinio(uploadCtx, p.minioCli, p.s3.Bucket, localPath, objectPath)
		cancel()
		if err != nil {
			return fmt.Errorf("upload %s: %w", video.Name, err)
		}
		video.ObjectPath = objectPath
		p.logger.Infof("uploaded %s to %s%s", video.Name, p.s3.UrlPrefix(), objectPath)
	}

	if p.nsqProducer != nil {
		msgData, err := json.Marshal(video.ToMessage())
		if err != nil {
			return err
		}
		if err := p.nsqProducer.Publish(p.nsqTopic, msgData); err != nil {
			return fmt.Errorf("publish to NSQ failed for %s: %w", video.Name, err)
		}
	}
	return nil
}

func (p *Publisher) Stop() {
	if p.nsqProducer != nil {
		p.nsqProducer.Stop()
	}
}

// ObjectPath lays processed videos out by creation day.
func ObjectPath(video *dao.ProcessedVideo) string {
	ts := video.CreatedAt()
	if ts.IsZero() {
		ts = time.Now()
	}
	return fmt.Sprintf("/processed/%04d/%02d/%02d/%s", ts.Year(), ts.Month(), ts.Day(), video.Name)
}
