// Package awstest provides in-memory stand-ins for the AWS clients in package aws.
package awstest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var attributeNotExists = regexp.MustCompile(`^attribute_not_exists\((\w+)\)$`)

// DynamoDB keeps items per table keyed by the table's hash key. It honors
// attribute_not_exists conditions on Put and cancels transactions the way
// DynamoDB does.
type DynamoDB struct {
	mu     sync.Mutex
	tables map[string]*table

	// GetErr and TransactErr, when set, are returned by the matching call.
	GetErr      error
	TransactErr error

	GetCalls      int
	TransactCalls int
}

type table struct {
	hashKey string
	items   map[string]map[string]types.AttributeValue
}

// NewDynamoDB returns an empty fake with no tables.
func NewDynamoDB() *DynamoDB {
	return &DynamoDB{tables: map[string]*table{}}
}

// AddTable registers a table whose items are keyed by hashKey.
func (d *DynamoDB) AddTable(name, hashKey string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.tables[name]; !ok {
		d.tables[name] = &table{hashKey: hashKey, items: map[string]map[string]types.AttributeValue{}}
	}
}

// Items returns a copy of every item stored in name.
func (d *DynamoDB) Items(name string) []map[string]types.AttributeValue {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.tables[name]
	if !ok {
		return nil
	}
	out := make([]map[string]types.AttributeValue, 0, len(t.items))
	for _, it := range t.items {
		out = append(out, it)
	}
	return out
}

// Put stores item in name without any condition.
func (d *DynamoDB) Put(name string, item map[string]types.AttributeValue) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := d.table(name)
	if err != nil {
		return err
	}
	pk, err := keyValue(item, t.hashKey)
	if err != nil {
		return err
	}
	t.items[pk] = item
	return nil
}

func (d *DynamoDB) CreateTable(ctx context.Context, params *dyn.CreateTableInput, optFns ...func(*dyn.Options)) (*dyn.CreateTableOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	name := sdkaws.ToString(params.TableName)
	if _, ok := d.tables[name]; ok {
		return nil, &types.ResourceInUseException{Message: sdkaws.String("table already exists: " + name)}
	}
	var hashKey string
	for _, ks := range params.KeySchema {
		if ks.KeyType == types.KeyTypeHash {
			hashKey = sdkaws.ToString(ks.AttributeName)
		}
	}
	if hashKey == "" {
		return nil, errors.New("create table: no hash key")
	}
	d.tables[name] = &table{hashKey: hashKey, items: map[string]map[string]types.AttributeValue{}}
	return &dyn.CreateTableOutput{}, nil
}

func (d *DynamoDB) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.GetCalls++
	if d.GetErr != nil {
		return nil, d.GetErr
	}
	t, err := d.table(sdkaws.ToString(params.TableName))
	if err != nil {
		return nil, err
	}
	pk, err := keyValue(params.Key, t.hashKey)
	if err != nil {
		return nil, err
	}
	item, ok := t.items[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (d *DynamoDB) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.TransactCalls++
	if d.TransactErr != nil {
		return nil, d.TransactErr
	}

	type write struct {
		t    *table
		pk   string
		item map[string]types.AttributeValue
	}
	writes := make([]write, 0, len(params.TransactItems))
	reasons := make([]types.CancellationReason, len(params.TransactItems))
	canceled := false

	for i, it := range params.TransactItems {
		reasons[i] = types.CancellationReason{Code: sdkaws.String("None")}
		p := it.Put
		if p == nil {
			return nil, fmt.Errorf("transact item %d: only Put is supported", i)
		}
		t, err := d.table(sdkaws.ToString(p.TableName))
		if err != nil {
			return nil, err
		}
		pk, err := keyValue(p.Item, t.hashKey)
		if err != nil {
			return nil, err
		}
		if m := attributeNotExists.FindStringSubmatch(sdkaws.ToString(p.ConditionExpression)); m != nil {
			if existing, ok := t.items[pk]; ok {
				if _, has := existing[m[1]]; has {
					reasons[i] = types.CancellationReason{
						Code:    sdkaws.String("ConditionalCheckFailed"),
						Message: sdkaws.String("The conditional request failed"),
					}
					canceled = true
				}
			}
		}
		writes = append(writes, write{t: t, pk: pk, item: p.Item})
	}

	if canceled {
		return nil, &types.TransactionCanceledException{
			Message:             sdkaws.String("Transaction cancelled, please refer cancellation reasons for specific reasons"),
			CancellationReasons: reasons,
		}
	}
	for _, w := range writes {
		w.t.items[w.pk] = w.item
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}

func (d *DynamoDB) table(name string) (*table, error) {
	t, ok := d.tables[name]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: sdkaws.String("Requested resource not found: " + name)}
	}
	return t, nil
}

func keyValue(item map[string]types.AttributeValue, attr string) (string, error) {
	switch v := item[attr].(type) {
	case *types.AttributeValueMemberS:
		return v.Value, nil
	case *types.AttributeValueMemberN:
		return v.Value, nil
	default:
		return "", fmt.Errorf("missing key attribute %q", attr)
	}
}
