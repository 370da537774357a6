/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	kverrors "github.com/suparena/kvmodels/errors"
	"github.com/suparena/kvmodels/kvstore"
)

// Attribute names of the single-table key/value layout. Every item carries
// the record key under K and its UTF-8 value under V; counter items keep a
// numeric V so UpdateItem ADD can increment them atomically.
const (
	attrKey   = "K"
	attrValue = "V"
)

// Batch limits imposed by the DynamoDB API.
const (
	batchGetLimit   = 100
	batchWriteLimit = 25
)

// Store implements kvstore.Store on a DynamoDB table with a single string
// partition key K. Key enumeration uses Scan with a begins_with filter, so
// this backend trades Keys performance for availability of the rest of the
// contract; see the package doc for when that trade is acceptable.
type Store struct {
	client    *sdk.Client
	tableName string
}

// NewClient initializes a DynamoDB client using static AWS credentials.
func NewClient(awsAccessKey, awsSecretKey, awsRegion string) (*sdk.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, kverrors.NewConfigurationError(fmt.Sprintf("failed to load AWS configuration: %v", err))
	}
	return sdk.NewFromConfig(cfg), nil
}

// New constructs a Store for the given table.
func New(awsAccessKey, awsSecretKey, awsRegion, tableName string) (*Store, error) {
	client, err := NewClient(awsAccessKey, awsSecretKey, awsRegion)
	if err != nil {
		return nil, err
	}
	return &Store{client: client, tableName: tableName}, nil
}

// NewFromClient wraps an existing DynamoDB client.
func NewFromClient(client *sdk.Client, tableName string) *Store {
	return &Store{client: client, tableName: tableName}
}

var _ kvstore.Store = (*Store)(nil)
var _ kvstore.Incrementer = (*Store)(nil)

// item is the single-table layout of one stored entry.
type item struct {
	Key   string `dynamodbav:"K"`
	Value string `dynamodbav:"V"`
}

func marshalItem(key, value string) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(item{Key: key, Value: value})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item %q: %w", key, err)
	}
	return av, nil
}

func (s *Store) keyAttr(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrKey: &types.AttributeValueMemberS{Value: key},
	}
}

// valueOf extracts the stored text from an item, accepting both string
// values and numeric counter values.
func valueOf(item map[string]types.AttributeValue) (string, error) {
	attr, ok := item[attrValue]
	if !ok {
		return "", fmt.Errorf("item missing %s attribute", attrValue)
	}
	switch tv := attr.(type) {
	case *types.AttributeValueMemberS:
		return tv.Value, nil
	case *types.AttributeValueMemberN:
		return tv.Value, nil
	default:
		return "", fmt.Errorf("unexpected %s attribute type %T", attrValue, attr)
	}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &s.tableName,
		Key:       s.keyAttr(key),
	})
	if err != nil {
		return "", false, fmt.Errorf("GetItem %q: %w", key, err)
	}
	if out.Item == nil {
		return "", false, nil
	}
	v, err := valueOf(out.Item)
	if err != nil {
		return "", false, fmt.Errorf("GetItem %q: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	av, err := marshalItem(key, value)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &s.tableName,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("PutItem %q: %w", key, err)
	}
	return nil
}

func (s *Store) MGet(ctx context.Context, keys []string) ([]string, error) {
	found := make(map[string]string, len(keys))

	for start := 0; start < len(keys); start += batchGetLimit {
		end := start + batchGetLimit
		if end > len(keys) {
			end = len(keys)
		}

		request := make([]map[string]types.AttributeValue, 0, end-start)
		for _, k := range keys[start:end] {
			request = append(request, s.keyAttr(k))
		}

		// BatchGetItem may return unprocessed keys under load; loop until
		// the batch drains.
		pending := map[string]types.KeysAndAttributes{
			s.tableName: {Keys: request},
		}
		for len(pending) > 0 {
			out, err := s.client.BatchGetItem(ctx, &sdk.BatchGetItemInput{
				RequestItems: pending,
			})
			if err != nil {
				return nil, fmt.Errorf("BatchGetItem: %w", err)
			}
			for _, item := range out.Responses[s.tableName] {
				keyAttr, ok := item[attrKey].(*types.AttributeValueMemberS)
				if !ok {
					return nil, fmt.Errorf("BatchGetItem: item missing %s attribute", attrKey)
				}
				v, err := valueOf(item)
				if err != nil {
					return nil, fmt.Errorf("BatchGetItem: %w", err)
				}
				found[keyAttr.Value] = v
			}
			pending = out.UnprocessedKeys
		}
	}

	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = found[k]
	}
	return values, nil
}

func (s *Store) MSet(ctx context.Context, kv map[string]string) error {
	writes := make([]types.WriteRequest, 0, len(kv))
	for k, v := range kv {
		av, err := marshalItem(k, v)
		if err != nil {
			return err
		}
		writes = append(writes, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: av},
		})
	}
	return s.batchWrite(ctx, writes)
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	writes := make([]types.WriteRequest, 0, len(keys))
	for _, k := range keys {
		writes = append(writes, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: s.keyAttr(k)},
		})
	}
	return s.batchWrite(ctx, writes)
}

func (s *Store) batchWrite(ctx context.Context, writes []types.WriteRequest) error {
	for start := 0; start < len(writes); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(writes) {
			end = len(writes)
		}

		pending := map[string][]types.WriteRequest{
			s.tableName: writes[start:end],
		}
		for len(pending) > 0 {
			out, err := s.client.BatchWriteItem(ctx, &sdk.BatchWriteItemInput{
				RequestItems: pending,
			})
			if err != nil {
				return fmt.Errorf("BatchWriteItem: %w", err)
			}
			pending = out.UnprocessedItems
		}
	}
	return nil
}

// Keys enumerates keys matching a "<prefix>:<model>:*" pattern with a
// filtered Scan. Only trailing-star patterns are supported; that is the
// only shape the record layout produces.
func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	prefix, ok := strings.CutSuffix(pattern, "*")
	if !ok {
		return nil, kverrors.Validationf("unsupported key pattern %q", pattern)
	}

	filter := "begins_with(#k, :prefix)"
	names := map[string]string{"#k": attrKey}
	values := map[string]types.AttributeValue{
		":prefix": &types.AttributeValueMemberS{Value: prefix},
	}

	var keys []string
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &sdk.ScanInput{
			TableName:                 &s.tableName,
			FilterExpression:          &filter,
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
			ProjectionExpression:      aws.String("#k"),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("Scan %q: %w", pattern, err)
		}
		for _, item := range out.Items {
			if keyAttr, ok := item[attrKey].(*types.AttributeValueMemberS); ok {
				keys = append(keys, keyAttr.Value)
			}
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return keys, nil
}

// Incr implements kvstore.Incrementer with UpdateItem ADD, which is atomic
// per item. The counter lives in a numeric V attribute.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	expr := "ADD #v :one"
	out, err := s.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              s.keyAttr(key),
		UpdateExpression: &expr,
		ExpressionAttributeNames: map[string]string{
			"#v": attrValue,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("UpdateItem ADD %q: %w", key, err)
	}
	counter, ok := out.Attributes[attrValue].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("UpdateItem ADD %q: counter attribute missing from response", key)
	}
	var n int64
	if _, err := fmt.Sscan(counter.Value, &n); err != nil {
		return 0, fmt.Errorf("UpdateItem ADD %q: bad counter value %q", key, counter.Value)
	}
	return n, nil
}
