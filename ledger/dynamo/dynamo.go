// Package dynamo implements ledger.Ledger on a DynamoDB table, so several
// hosts can share resume state.
//
// Table schema:
//   - Partition key: scope (string) - separates independent upload targets
//   - Sort key: name (string) - blob name
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name pathfiles-ledger \
//	  --attribute-definitions AttributeName=scope,AttributeType=S AttributeName=name,AttributeType=S \
//	  --key-schema AttributeName=scope,KeyType=HASH AttributeName=name,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/pathfiles/ledger"
)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

var _ DDBClient = (*dynamodb.Client)(nil)

// ErrInvalidItem is returned when a stored item lacks a required attribute.
var ErrInvalidItem = errors.New("invalid ledger item")

// Ledger stores entries in DynamoDB.
type Ledger struct {
	client DDBClient
	table  string
	scope  string
}

var _ ledger.Ledger = (*Ledger)(nil)

// New creates a DynamoDB ledger. scope partitions entries, typically the
// upload target URI ("s3://bucket/prefix").
func New(client DDBClient, table, scope string) *Ledger {
	return &Ledger{client: client, table: table, scope: scope}
}

func (l *Ledger) key(name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"scope": &types.AttributeValueMemberS{Value: l.scope},
		"name":  &types.AttributeValueMemberS{Value: name},
	}
}

// Lookup implements ledger.Ledger.
func (l *Ledger) Lookup(ctx context.Context, name string) (ledger.Entry, bool, error) {
	resp, err := l.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(l.table),
		Key:            l.key(name),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return ledger.Entry{}, false, fmt.Errorf("failed to query DynamoDB: %w", err)
	}
	if len(resp.Item) == 0 {
		return ledger.Entry{}, false, nil
	}

	e, err := decode(resp.Item)
	if err != nil {
		return ledger.Entry{}, false, fmt.Errorf("%s: %w", name, err)
	}
	return e, true, nil
}

// Record implements ledger.Ledger.
func (l *Ledger) Record(ctx context.Context, e ledger.Entry) error {
	item := l.key(e.Name)
	item["size"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(e.Size, 10)}
	item["crc32c"] = &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(e.CRC32C), 10)}
	item["uploaded_at"] = &types.AttributeValueMemberS{Value: e.UploadedAt.UTC().Format(time.RFC3339Nano)}

	_, err := l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to record %s in DynamoDB: %w", e.Name, err)
	}
	return nil
}

// Close implements ledger.Ledger. The client is owned by the caller.
func (l *Ledger) Close() error { return nil }

func decode(item map[string]types.AttributeValue) (ledger.Entry, error) {
	name, ok := item["name"].(*types.AttributeValueMemberS)
	if !ok {
		return ledger.Entry{}, fmt.Errorf("%w: name", ErrInvalidItem)
	}
	sizeAttr, ok := item["size"].(*types.AttributeValueMemberN)
	if !ok {
		return ledger.Entry{}, fmt.Errorf("%w: size", ErrInvalidItem)
	}
	crcAttr, ok := item["crc32c"].(*types.AttributeValueMemberN)
	if !ok {
		return ledger.Entry{}, fmt.Errorf("%w: crc32c", ErrInvalidItem)
	}

	size, err := strconv.ParseInt(sizeAttr.Value, 10, 64)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("failed to parse size: %w", err)
	}
	crc, err := strconv.ParseUint(crcAttr.Value, 10, 32)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("failed to parse crc32c: %w", err)
	}

	e := ledger.Entry{Name: name.Value, Size: size, CRC32C: uint32(crc)}
	if at, ok := item["uploaded_at"].(*types.AttributeValueMemberS); ok {
		if t, err := time.Parse(time.RFC3339Nano, at.Value); err == nil {
			e.UploadedAt = t
		}
	}
	return e, nil
}
