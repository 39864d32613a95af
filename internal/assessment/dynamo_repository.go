package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

type dynamoPutter interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type dynamoItem struct {
	ID                 string  `dynamodbav:"id"`
	ClinicName         string  `dynamodbav:"clinic_name"`
	DailyCalls         int     `dynamodbav:"daily_calls"`
	ReceptionConfig    string  `dynamodbav:"reception_config"`
	MissedCallStrategy string  `dynamodbav:"missed_call_strategy"`
	LeadFollowUpTime   string  `dynamodbav:"lead_follow_up_time"`
	RunAds             bool    `dynamodbav:"run_ads"`
	AvgCaseValue       float64 `dynamodbav:"avg_case_value"`
	RiskScore          int     `dynamodbav:"risk_score"`
	PotentialRevenue   float64 `dynamodbav:"potential_revenue"`
	RiskLevel          string  `dynamodbav:"risk_level"`
	CreatedAt          string  `dynamodbav:"created_at"`
}

// DynamoRepository writes assessments to a DynamoDB table keyed by id.
type DynamoRepository struct {
	client    dynamoPutter
	tableName string
}

func NewDynamoRepository(client dynamoPutter, tableName string) *DynamoRepository {
	if client == nil {
		panic("assessment: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("assessment: table name cannot be empty")
	}
	return &DynamoRepository{client: client, tableName: tableName}
}

func (r *DynamoRepository) Insert(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("assessment: record required")
	}
	item, err := attributevalue.MarshalMap(dynamoItem{
		ID:                 rec.ID,
		ClinicName:         rec.ClinicName,
		DailyCalls:         rec.DailyCalls,
		ReceptionConfig:    string(rec.ReceptionConfig),
		MissedCallStrategy: string(rec.MissedCallStrategy),
		LeadFollowUpTime:   string(rec.LeadFollowUpTime),
		RunAds:             rec.RunAds,
		AvgCaseValue:       rec.AvgCaseValue,
		RiskScore:          rec.RiskScore,
		PotentialRevenue:   rec.PotentialRevenue,
		RiskLevel:          string(rec.RiskLevel),
		CreatedAt:          rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("assessment: failed to marshal record: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("assessment: failed to persist record: %w", err)
	}
	return nil
}
