package dynamo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pathfiles/ledger"
)

// mockDDBClient is an in-memory DynamoDB mock for testing.
type mockDDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue // scope:name -> item
	err   error
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func itemKey(m map[string]types.AttributeValue) string {
	return m["scope"].(*types.AttributeValueMemberS).Value + ":" + m["name"].(*types.AttributeValueMemberS).Value
}

func (m *mockDDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	m.items[itemKey(params.Item)] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, m.err
	}
	if item, ok := m.items[itemKey(params.Key)]; ok {
		return &dynamodb.GetItemOutput{Item: item}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func TestLedger_RecordLookup(t *testing.T) {
	ctx := context.Background()
	l := New(newMockDDBClient(), "pathfiles-ledger", "s3://bucket/prefix")
	defer l.Close()

	_, ok, err := l.Lookup(ctx, "a.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	e := ledger.Entry{Name: "a.txt", Size: 5, CRC32C: 0xe3069283, UploadedAt: time.Unix(1700000000, 123).UTC()}
	require.NoError(t, l.Record(ctx, e))

	got, ok, err := l.Lookup(ctx, "a.txt")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, e.Name, got.Name)
	assert.Equal(t, e.Size, got.Size)
	assert.Equal(t, e.CRC32C, got.CRC32C)
	assert.True(t, e.UploadedAt.Equal(got.UploadedAt))
}

func TestLedger_ScopesAreIsolated(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	a := New(ddb, "t", "s3://a")
	b := New(ddb, "t", "s3://b")

	require.NoError(t, a.Record(ctx, ledger.Entry{Name: "x", Size: 1}))

	_, ok, err := b.Lookup(ctx, "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedger_ClientError(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	boom := errors.New("throttled")
	ddb.err = boom
	l := New(ddb, "t", "s")

	_, _, err := l.Lookup(ctx, "x")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, l.Record(ctx, ledger.Entry{Name: "x"}), boom)
}

func TestLedger_InvalidItem(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	ddb.items["s:x"] = map[string]types.AttributeValue{
		"scope": &types.AttributeValueMemberS{Value: "s"},
		"name":  &types.AttributeValueMemberS{Value: "x"},
	}
	l := New(ddb, "t", "s")

	_, _, err := l.Lookup(ctx, "x")
	assert.ErrorIs(t, err, ErrInvalidItem)
}
