// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dealflow-workers/internal/common/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const EventHighConfidenceMatch = "match.high_confidence"

// MatchEvent is the payload published when a startup scores as a strong
// fit for a thesis.
type MatchEvent struct {
	EventType    string    `json:"eventType"`
	MatchID      string    `json:"matchId"`
	StartupID    string    `json:"startupId"`
	ThesisID     string    `json:"thesisId"`
	InvestorID   string    `json:"investorId,omitempty"`
	OverallScore int       `json:"overallScore"`
	Confidence   string    `json:"confidence"`
	Reasons      string    `json:"reasons"`
	ScoredAt     time.Time `json:"scoredAt"`
}

// EventPublisher is what the workers depend on; tests substitute their own.
type EventPublisher interface {
	PublishMatchEvent(ctx context.Context, event MatchEvent) error
}

// snsAPI is the slice of *sns.Client the publisher uses.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSPublisher struct {
	client   snsAPI
	topicARN string
}

func NewSNSPublisher(ctx context.Context, region, topicARN string) (*SNSPublisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SNSPublisher{client: sns.NewFromConfig(cfg), topicARN: topicARN}, nil
}

// PublishMatchEvent sends event with eventType and confidence as message
// attributes so subscribers can filter without parsing the body.
func (p *SNSPublisher) PublishMatchEvent(ctx context.Context, event MatchEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.NewInternalError(fmt.Errorf("marshal match event: %w", err))
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String("High confidence startup match"),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.EventType),
			},
			"confidence": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.Confidence),
			},
		},
	})
	if err != nil {
		return errors.NewEventPublishFailedError(p.topicARN, err)
	}
	return nil
}

// NoopPublisher is used when SNS is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishMatchEvent(context.Context, MatchEvent) error { return nil }
