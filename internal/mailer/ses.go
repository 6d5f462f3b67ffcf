package mailer

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	appconfig "github.com/skicrew/inscriptions/internal/config"
	"github.com/skicrew/inscriptions/internal/pkg/logger"
)

// SESSender sends emails via AWS SES using the SDK v2.
type SESSender struct {
	client     *sesv2.Client
	sender     string
	senderName string
	replyTo    string
	region     string
	timeout    time.Duration
}

// NewSESSender creates an SES sender. Static credentials are used when
// configured; otherwise the default AWS chain (IAM role on ECS) applies.
func NewSESSender(ctx context.Context, cfg appconfig.EmailConfig) (*SESSender, error) {
	if cfg.Sender == "" {
		return nil, fmt.Errorf("email sender address not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &SESSender{
		client:     sesv2.NewFromConfig(awsCfg),
		sender:     cfg.Sender,
		senderName: cfg.SenderName,
		replyTo:    cfg.ReplyTo,
		region:     cfg.Region,
		timeout:    cfg.Timeout(),
	}, nil
}

// Send delivers a single email through AWS SES. The message goes out as a
// raw MIME payload so the PDF entry form rides along as an attachment.
func (s *SESSender) Send(ctx context.Context, msg Message) (*SendResult, error) {
	if s.client == nil {
		return nil, fmt.Errorf("SES client not initialized - check credentials")
	}
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("message has no recipients")
	}

	from := s.sender
	if s.senderName != "" {
		from = fmt.Sprintf("%s <%s>", s.senderName, s.sender)
	}
	if msg.ReplyTo == "" {
		msg.ReplyTo = s.replyTo
	}

	raw, err := buildRaw(from, msg)
	if err != nil {
		return nil, fmt.Errorf("building MIME message: %w", err)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: msg.To},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
		EmailTags: messageTags(msg.Tags),
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		log.Printf("[mailer] SES send failed (%d recipients): %v", len(msg.To), err)
		return nil, err
	}

	messageID := ""
	if result.MessageId != nil {
		messageID = *result.MessageId
	}

	logger.Info("entry form sent",
		"recipients", joinRedacted(msg.To),
		"message_id", messageID,
		"attachment_bytes", attachmentSize(msg.Attachment),
	)

	return &SendResult{MessageID: messageID, SentAt: time.Now().UTC()}, nil
}

func messageTags(tags map[string]string) []types.MessageTag {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]types.MessageTag, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.MessageTag{Name: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func joinRedacted(addrs []string) string {
	s := ""
	for i, a := range addrs {
		if i > 0 {
			s += ","
		}
		s += logger.RedactEmail(a)
	}
	return s
}

func attachmentSize(a *Attachment) int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}
