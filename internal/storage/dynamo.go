package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ignite/outreach-analytics/internal/domain"
)

// DynamoArchive stores snapshots in a single DynamoDB table keyed by
// tenant and kind, with the date as the sort key so range reads map
// onto one Query.
type DynamoArchive struct {
	client        *dynamodb.Client
	tableName     string
	retentionDays int
}

// snapshotItem is the DynamoDB row shape. The snapshot itself rides
// in Data as JSON so the table schema never chases the report shape.
type snapshotItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Data      string `dynamodbav:"Data"`
	Timestamp string `dynamodbav:"Timestamp"`
	TTL       int64  `dynamodbav:"TTL,omitempty"`
}

// NewDynamoArchive creates a DynamoDB-backed snapshot archive.
func NewDynamoArchive(ctx context.Context, tableName, region, profile string, retentionDays int) (*DynamoArchive, error) {
	var cfg aws.Config
	var err error

	if profile != "" {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
			awsconfig.WithSharedConfigProfile(profile),
		)
	} else {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &DynamoArchive{
		client:        dynamodb.NewFromConfig(cfg),
		tableName:     tableName,
		retentionDays: retentionDays,
	}, nil
}

func archiveKey(orgID string, kind domain.EntityKind) string {
	return fmt.Sprintf("ORG#%s#%s", orgID, kind)
}

// SaveSnapshot writes one snapshot. Same org, kind, and date lands on
// the same key, so the newest write wins.
func (a *DynamoArchive) SaveSnapshot(ctx context.Context, snap domain.InsightSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	item := snapshotItem{
		PK:        archiveKey(snap.OrganizationID, snap.Kind),
		SK:        snap.Date,
		Data:      string(data),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		TTL:       time.Now().Add(time.Duration(a.retentionDays) * 24 * time.Hour).Unix(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling item: %w", err)
	}

	_, err = a.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(a.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting snapshot to DynamoDB: %w", err)
	}

	return nil
}

// ListSnapshots queries one tenant partition for the inclusive date
// range. ISO dates sort lexicographically, so BETWEEN on the sort key
// is a chronological range.
func (a *DynamoArchive) ListSnapshots(ctx context.Context, orgID string, kind domain.EntityKind, from, to string) ([]domain.InsightSnapshot, error) {
	result, err := a.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(a.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND SK BETWEEN :from AND :to"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":   &types.AttributeValueMemberS{Value: archiveKey(orgID, kind)},
			":from": &types.AttributeValueMemberS{Value: from},
			":to":   &types.AttributeValueMemberS{Value: to},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying DynamoDB: %w", err)
	}

	var snaps []domain.InsightSnapshot
	for _, raw := range result.Items {
		var item snapshotItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			continue
		}
		var snap domain.InsightSnapshot
		if err := json.Unmarshal([]byte(item.Data), &snap); err != nil {
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}
