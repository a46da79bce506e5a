package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// Dynamo implements Store over DynamoDB. Secondary-index lookups expect a
// GSI named "<field>-index" for the queried field, matching the deployed
// table definitions. Increment and Decrement use ADD update expressions so
// counter mutations are atomic server-side.
type Dynamo struct {
	client *dynamodb.Client
}

// NewDynamo builds a DynamoDB-backed store. endpoint overrides the service
// URL for local development and is usually empty.
func NewDynamo(ctx context.Context, accessKeyID, secretAccessKey, region, endpoint string) (*Dynamo, error) {
	if region == "" {
		return nil, fmt.Errorf("aws region is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return &Dynamo{client: client}, nil
}

// NewDynamoFromClient wraps an existing client, mainly for tests against
// DynamoDB Local.
func NewDynamoFromClient(client *dynamodb.Client) *Dynamo {
	return &Dynamo{client: client}
}

func (d *Dynamo) Get(ctx context.Context, table, keyField, keyValue string) (Row, bool, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			keyField: &types.AttributeValueMemberS{Value: keyValue},
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("%w: get %s: %v", ErrUnavailable, table, err)
	}
	if out.Item == nil {
		return nil, false, nil
	}
	row, err := unmarshalRow(out.Item)
	if err != nil {
		return nil, false, fmt.Errorf("%w: decode %s item: %v", ErrUnavailable, table, err)
	}
	return row, true, nil
}

func (d *Dynamo) GetByIndex(ctx context.Context, table, indexField, value string) ([]Row, error) {
	var rows []Row
	var startKey map[string]types.AttributeValue
	for {
		out, err := d.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(table),
			IndexName:              aws.String(indexField + "-index"),
			KeyConditionExpression: aws.String("#k = :v"),
			ExpressionAttributeNames: map[string]string{
				"#k": indexField,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":v": &types.AttributeValueMemberS{Value: value},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: query %s by %s: %v", ErrUnavailable, table, indexField, err)
		}
		for _, item := range out.Items {
			row, err := unmarshalRow(item)
			if err != nil {
				return nil, fmt.Errorf("%w: decode %s item: %v", ErrUnavailable, table, err)
			}
			rows = append(rows, row)
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return rows, nil
}

func (d *Dynamo) Scan(ctx context.Context, table string) ([]Row, error) {
	var rows []Row
	var startKey map[string]types.AttributeValue
	for {
		out, err := d.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", ErrUnavailable, table, err)
		}
		for _, item := range out.Items {
			row, err := unmarshalRow(item)
			if err != nil {
				return nil, fmt.Errorf("%w: decode %s item: %v", ErrUnavailable, table, err)
			}
			rows = append(rows, row)
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return rows, nil
}

func (d *Dynamo) Write(ctx context.Context, table string, row Row) error {
	item, err := attributevalue.MarshalMap(map[string]any(row))
	if err != nil {
		return fmt.Errorf("%w: encode %s item: %v", ErrUnavailable, table, err)
	}
	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	}); err != nil {
		log.Error().Err(err).Str("table", table).Msg("DynamoDB put failed")
		return fmt.Errorf("%w: put %s: %v", ErrUnavailable, table, err)
	}
	return nil
}

func (d *Dynamo) Delete(ctx context.Context, table, keyField, keyValue string) error {
	if _, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			keyField: &types.AttributeValueMemberS{Value: keyValue},
		},
	}); err != nil {
		log.Error().Err(err).Str("table", table).Str("key", keyValue).Msg("DynamoDB delete failed")
		return fmt.Errorf("%w: delete %s: %v", ErrUnavailable, table, err)
	}
	return nil
}

// Increment adds by to the value field with an ADD expression. The mutation
// happens server-side; there is no read-modify-write window.
func (d *Dynamo) Increment(ctx context.Context, table, keyField, keyValue, valueField string, by int) error {
	if _, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			keyField: &types.AttributeValueMemberS{Value: keyValue},
		},
		UpdateExpression: aws.String("ADD #f :by"),
		ExpressionAttributeNames: map[string]string{
			"#f": valueField,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":by": &types.AttributeValueMemberN{Value: strconv.Itoa(by)},
		},
	}); err != nil {
		log.Error().Err(err).Str("table", table).Str("key", keyValue).Str("field", valueField).
			Msg("DynamoDB counter update failed")
		return fmt.Errorf("%w: update %s.%s: %v", ErrUnavailable, table, valueField, err)
	}
	return nil
}

func (d *Dynamo) Decrement(ctx context.Context, table, keyField, keyValue, valueField string, by int) error {
	return d.Increment(ctx, table, keyField, keyValue, valueField, -by)
}

func unmarshalRow(item map[string]types.AttributeValue) (Row, error) {
	var m map[string]any
	if err := attributevalue.UnmarshalMap(item, &m); err != nil {
		return nil, err
	}
	return Row(m), nil
}
