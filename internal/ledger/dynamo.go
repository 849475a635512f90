package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-idempotent-payments/internal/aws"
	"github.com/imrishuroy/go-idempotent-payments/internal/idempotency"
	"github.com/imrishuroy/go-idempotent-payments/internal/payments"
)

// paymentItem is the shape persisted in the payments DynamoDB table.
// Amount is kept as a decimal string so no precision is lost.
type paymentItem struct {
	ID             string    `dynamodbav:"id"` // PK
	CardNumber     string    `dynamodbav:"card_number"`
	ExpiryMonth    string    `dynamodbav:"expiry_month"`
	ExpiryYear     string    `dynamodbav:"expiry_year"`
	Amount         string    `dynamodbav:"amount"`
	Currency       string    `dynamodbav:"currency"`
	Status         string    `dynamodbav:"status"`
	IdempotencyKey string    `dynamodbav:"idempotency_key"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
}

// DynamoLedger stores payments in one table and claims idempotency keys in
// another, writing both in a single transaction.
type DynamoLedger struct {
	client      aws.DynamoDBAPI
	tableName   string
	idempotency *idempotency.Store
	nowFunc     func() time.Time
	newID       func() string
}

var _ payments.Ledger = (*DynamoLedger)(nil)

// NewDynamoLedger returns a ledger over paymentsTable and idempotencyTable.
func NewDynamoLedger(client aws.DynamoDBAPI, paymentsTable, idempotencyTable string) *DynamoLedger {
	return &DynamoLedger{
		client:      client,
		tableName:   paymentsTable,
		idempotency: idempotency.NewStore(client, idempotencyTable),
		nowFunc:     time.Now,
		newID:       uuid.NewString,
	}
}

// FindByIdempotencyKey resolves key through the idempotency table.
func (l *DynamoLedger) FindByIdempotencyKey(ctx context.Context, key string) (*payments.Payment, error) {
	rec, err := l.idempotency.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("lookup idempotency key: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	p, err := l.get(ctx, rec.PaymentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("idempotency key %s in %s points at missing payment %s in %s",
			key, l.idempotency.TableName(), rec.PaymentID, l.tableName)
	}
	return p, nil
}

// Create claims p.IdempotencyKey and stores p in one TransactWriteItems call.
func (l *DynamoLedger) Create(ctx context.Context, p payments.Payment) (payments.Payment, error) {
	p.ID = l.newID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = l.nowFunc().UTC()
	}

	claim, err := l.idempotency.PutIfAbsent(p.IdempotencyKey, p.ID)
	if err != nil {
		return payments.Payment{}, err
	}
	item, err := attributevalue.MarshalMap(toItem(p))
	if err != nil {
		return payments.Payment{}, fmt.Errorf("marshal payment item: %w", err)
	}

	input := &dyn.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			claim,
			{
				Put: &types.Put{
					TableName:           &l.tableName,
					Item:                item,
					ConditionExpression: awsString("attribute_not_exists(id)"),
				},
			},
		},
	}

	if _, err := l.client.TransactWriteItems(ctx, input); err != nil {
		if idempotency.KeyTaken(err, 0) {
			log.Printf("[ledger][dynamo] idempotency key already claimed key=%s", p.IdempotencyKey)
			return payments.Payment{}, payments.ErrDuplicateIdempotencyKey
		}
		return payments.Payment{}, fmt.Errorf("transact write: %w", err)
	}
	return p, nil
}

// GetByID fetches a payment by id. Identifiers that are not UUIDs cannot
// exist in this table and resolve to (nil, nil).
func (l *DynamoLedger) GetByID(ctx context.Context, id string) (*payments.Payment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return l.get(ctx, id)
}

// Migrate creates both tables, skipping any that already exist.
func (l *DynamoLedger) Migrate(ctx context.Context) error {
	inputs := []*dyn.CreateTableInput{
		{
			TableName: &l.tableName,
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: awsString("id"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: awsString("id"), KeyType: types.KeyTypeHash},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
		l.idempotency.CreateTableInput(),
	}
	for _, in := range inputs {
		_, err := l.client.CreateTable(ctx, in)
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			log.Printf("[ledger][dynamo] table exists name=%s", *in.TableName)
			continue
		}
		if err != nil {
			return fmt.Errorf("create table %s: %w", *in.TableName, err)
		}
		log.Printf("[ledger][dynamo] table created name=%s", *in.TableName)
	}
	return nil
}

func (l *DynamoLedger) get(ctx context.Context, id string) (*payments.Payment, error) {
	out, err := l.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &l.tableName,
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal payment: %w", err)
	}
	p, err := it.payment()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func toItem(p payments.Payment) paymentItem {
	return paymentItem{
		ID:             p.ID,
		CardNumber:     p.CardNumber,
		ExpiryMonth:    p.ExpiryMonth,
		ExpiryYear:     p.ExpiryYear,
		Amount:         p.Amount.String(),
		Currency:       p.Currency,
		Status:         string(p.Status),
		IdempotencyKey: p.IdempotencyKey,
		CreatedAt:      p.CreatedAt,
	}
}

func (it paymentItem) payment() (payments.Payment, error) {
	amount, err := decimal.NewFromString(it.Amount)
	if err != nil {
		return payments.Payment{}, fmt.Errorf("parse amount of payment %s: %w", it.ID, err)
	}
	return payments.Payment{
		ID:             it.ID,
		CardNumber:     it.CardNumber,
		ExpiryMonth:    it.ExpiryMonth,
		ExpiryYear:     it.ExpiryYear,
		Amount:         amount,
		Currency:       it.Currency,
		Status:         payments.Status(it.Status),
		IdempotencyKey: it.IdempotencyKey,
		CreatedAt:      it.CreatedAt,
	}, nil
}

func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }
