package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/otsob/musii-kit/dataset"
)

// DynamoDBClient is the subset of the DynamoDB API the catalog uses.
// *dynamodb.Client satisfies it.
type DynamoDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var _ DynamoDBClient = (*dynamodb.Client)(nil)

// DynamoDBCatalog tracks dataset manifest versions in a DynamoDB table.
//
// Table schema:
//
//	Partition key: dataset (S)
//	Sort key:      version (N)
//
// Each commit writes a new item with a conditional put, so two writers
// racing for the same version cannot both succeed.
type DynamoDBCatalog struct {
	client  DynamoDBClient
	table   string
	dataset string
}

// NewDynamoDBCatalog creates a catalog for one dataset within a table.
func NewDynamoDBCatalog(client DynamoDBClient, table, datasetName string) *DynamoDBCatalog {
	return &DynamoDBCatalog{
		client:  client,
		table:   table,
		dataset: datasetName,
	}
}

// Latest returns the newest committed version and its manifest path.
// A dataset with no commits has version 0.
func (c *DynamoDBCatalog) Latest(ctx context.Context) (uint64, string, error) {
	out, err := c.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.table),
		KeyConditionExpression: aws.String("dataset = :d"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":d": &ddbtypes.AttributeValueMemberS{Value: c.dataset},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("query latest version: %w", err)
	}
	if len(out.Items) == 0 {
		return 0, "", nil
	}

	item := out.Items[0]
	versionAttr, ok := item["version"].(*ddbtypes.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("catalog item has no numeric version")
	}
	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("parse version: %w", err)
	}

	var manifestPath string
	if pathAttr, ok := item["manifest_path"].(*ddbtypes.AttributeValueMemberS); ok {
		manifestPath = pathAttr.Value
	}
	return version, manifestPath, nil
}

// Commit records a new manifest as the next version. When another
// writer claims the same version first, Commit returns
// dataset.ErrConcurrentCommit.
func (c *DynamoDBCatalog) Commit(ctx context.Context, manifestPath string) (uint64, error) {
	latest, _, err := c.Latest(ctx)
	if err != nil {
		return 0, err
	}
	version := latest + 1

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item: map[string]ddbtypes.AttributeValue{
			"dataset":       &ddbtypes.AttributeValueMemberS{Value: c.dataset},
			"version":       &ddbtypes.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			"manifest_path": &ddbtypes.AttributeValueMemberS{Value: manifestPath},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return 0, dataset.ErrConcurrentCommit
		}
		return 0, fmt.Errorf("commit version %d: %w", version, err)
	}
	return version, nil
}
