package contact

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v5"
)

// Table attribute names. The table keys on (id, received_at) with received_at
// as the sort component.
const (
	attrID         = "id"
	attrReceivedAt = "received_at"
	attrName       = "name"
	attrEmail      = "email"
	attrSubject    = "subject"
	attrMessage    = "message"
)

// defaultRetryDelay is the fixed pause before the single internal retry of a
// transient store failure. The caller is a live HTTP client, so there is no
// room for a longer schedule.
const defaultRetryDelay = 200 * time.Millisecond

// DynamoDBClient defines the DynamoDB operations the repository needs.
type DynamoDBClient interface {
	PutItem(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoDBRepository persists contact messages as single DynamoDB items.
type DynamoDBRepository struct {
	client     DynamoDBClient
	tableName  string
	retryDelay time.Duration
}

// NewDynamoDBRepository creates a new DynamoDBRepository.
func NewDynamoDBRepository(client DynamoDBClient, tableName string) *DynamoDBRepository {
	return &DynamoDBRepository{
		client:     client,
		tableName:  tableName,
		retryDelay: defaultRetryDelay,
	}
}

// PutMessage inserts a message. The id is generated fresh per request, so the
// condition expression is a defensive guard only; a condition failure maps to
// ErrDuplicateMessage and is never retried. Transient failures are retried
// exactly once after a short fixed pause. The write is a single-item put, so
// it either lands fully or not at all.
func (r *DynamoDBRepository) PutMessage(ctx context.Context, msg *ContactMessage) error {
	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                marshalContactMessage(msg),
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	}

	_, err := backoff.Retry(ctx, func() (*dynamodb.PutItemOutput, error) {
		out, err := r.client.PutItem(ctx, input)
		if err != nil {
			var ccf *types.ConditionalCheckFailedException
			if errors.As(err, &ccf) {
				return nil, backoff.Permanent(ErrDuplicateMessage)
			}
			if !retryableStoreError(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return out, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(r.retryDelay)),
		backoff.WithMaxTries(2),
	)
	return err
}

// retryableStoreError reports whether a PutItem failure is worth the single
// retry. Throttling and server faults are; client faults (bad request,
// access denied, validation) are not. Non-API errors are treated as transport
// problems and retried.
func retryableStoreError(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return true
	}
	switch apiErr.ErrorCode() {
	case "ProvisionedThroughputExceededException",
		"ThrottlingException",
		"RequestLimitExceeded",
		"InternalServerError",
		"ServiceUnavailable":
		return true
	}
	return apiErr.ErrorFault() == smithy.FaultServer
}

// marshalContactMessage converts a ContactMessage to DynamoDB attribute
// values. received_at is formatted here and nowhere else, so the sort key and
// the stored attribute are always the same string.
func marshalContactMessage(msg *ContactMessage) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		attrID:         &types.AttributeValueMemberS{Value: msg.ID},
		attrReceivedAt: &types.AttributeValueMemberS{Value: msg.ReceivedAt.UTC().Format(time.RFC3339)},
		attrName:       &types.AttributeValueMemberS{Value: msg.Name},
		attrEmail:      &types.AttributeValueMemberS{Value: msg.Email},
		attrMessage:    &types.AttributeValueMemberS{Value: msg.Message},
	}

	if msg.Subject != "" {
		item[attrSubject] = &types.AttributeValueMemberS{Value: msg.Subject}
	}

	return item
}
