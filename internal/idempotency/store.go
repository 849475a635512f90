package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/go-idempotent-payments/internal/aws"
)

// KeyAttribute is the hash key of the idempotency table.
const KeyAttribute = "idempotency_key"

// Store encapsulates idempotency operations against DynamoDB.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore returns a Store for tableName.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// TableName returns the idempotency table this store reads and writes.
func (s *Store) TableName() string { return s.tableName }

// PutIfAbsent builds the transact item that claims key for paymentID. The
// write only succeeds while no record for key exists, so it must be sent in
// the same TransactWriteItems call as the payment itself.
func (s *Store) PutIfAbsent(key, paymentID string) (types.TransactWriteItem, error) {
	rec := Record{
		IdempotencyKey: key,
		PaymentID:      paymentID,
		CreatedAt:      s.nowFunc().UTC(),
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("marshal record: %w", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:           &s.tableName,
			Item:                item,
			ConditionExpression: awsString("attribute_not_exists(" + KeyAttribute + ")"),
		},
	}, nil
}

// Get retrieves an idempotency record by key. If not found, returns (nil, nil).
func (s *Store) Get(ctx context.Context, key string) (*Record, error) {
	input := &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			KeyAttribute: &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: awsBool(true),
	}
	out, err := s.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &rec, nil
}

// KeyTaken reports whether err is the failure of a PutIfAbsent item placed
// at position idx of a transaction.
func KeyTaken(err error, idx int) bool {
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		if len(tce.CancellationReasons) <= idx {
			// no reasons reported; the only condition we send is the key claim
			return true
		}
		code := tce.CancellationReasons[idx].Code
		return code != nil && *code == "ConditionalCheckFailed"
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}

// CreateTableInput describes the idempotency table for provisioning.
func (s *Store) CreateTableInput() *dyn.CreateTableInput {
	return &dyn.CreateTableInput{
		TableName: &s.tableName,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: awsString(KeyAttribute), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: awsString(KeyAttribute), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	}
}

// Helper
func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }
