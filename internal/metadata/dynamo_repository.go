package metadata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	attrRecordID          = "record_id"
	attrObjectName        = "object_name"
	attrContainer         = "container"
	attrSizeBytes         = "size_bytes"
	attrContentType       = "content_type"
	attrFileExtension     = "file_extension"
	attrUploadTimestamp   = "upload_timestamp"
	attrStoreLastModified = "store_last_modified"
	attrProcessedBy       = "processed_by"

	tableCreateTimeout = 2 * time.Minute
)

// DynamoDBClient defines the DynamoDB operations used by the repository.
type DynamoDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// DynamoRepository stores metadata records in a DynamoDB table keyed by record_id.
type DynamoRepository struct {
	client   DynamoDBClient
	table    string
	pageSize int32
}

// NewDynamoRepository builds a repository. pageSize <= 0 lets DynamoDB size the pages.
func NewDynamoRepository(client DynamoDBClient, table string, pageSize int) *DynamoRepository {
	if table == "" {
		table = "file-metadata"
	}
	repo := &DynamoRepository{client: client, table: table}
	if pageSize > 0 {
		repo.pageSize = int32(min(pageSize, math.MaxInt32))
	}
	return repo
}

// Upsert writes the record, replacing any item with the same record_id.
func (r *DynamoRepository) Upsert(ctx context.Context, rec Record) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      recordToItem(rec),
	})
	if err != nil {
		return fmt.Errorf("dynamodb put item: %w", err)
	}
	return nil
}

// Scan reads one page of the table starting after token.
func (r *DynamoRepository) Scan(ctx context.Context, token string) (Page, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.table),
	}
	if token != "" {
		input.ExclusiveStartKey = map[string]dbtypes.AttributeValue{
			attrRecordID: &dbtypes.AttributeValueMemberS{Value: token},
		}
	}
	if r.pageSize > 0 {
		input.Limit = aws.Int32(r.pageSize)
	}

	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return Page{}, fmt.Errorf("dynamodb scan: %w", err)
	}

	records := make([]Record, 0, len(out.Items))
	for _, item := range out.Items {
		rec, err := itemToRecord(item)
		if err != nil {
			return Page{}, err
		}
		records = append(records, rec)
	}

	next, err := continuationToken(out.LastEvaluatedKey)
	if err != nil {
		return Page{}, err
	}

	return Page{Records: records, NextToken: next}, nil
}

// Ping checks that the table is reachable.
func (r *DynamoRepository) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	if err != nil {
		return fmt.Errorf("describe table %q: %w", r.table, err)
	}
	return nil
}

// EnsureTable creates the table with an on-demand billing mode if it does not exist.
func (r *DynamoRepository) EnsureTable(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	if err == nil {
		return nil
	}
	var notFound *dbtypes.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("describe table %q: %w", r.table, err)
	}

	_, err = r.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.table),
		AttributeDefinitions: []dbtypes.AttributeDefinition{
			{AttributeName: aws.String(attrRecordID), AttributeType: dbtypes.ScalarAttributeTypeS},
		},
		KeySchema: []dbtypes.KeySchemaElement{
			{AttributeName: aws.String(attrRecordID), KeyType: dbtypes.KeyTypeHash},
		},
		BillingMode: dbtypes.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("create table %q: %w", r.table, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(r.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)}, tableCreateTimeout); err != nil {
		return fmt.Errorf("wait for table %q: %w", r.table, err)
	}
	return nil
}

func recordToItem(rec Record) map[string]dbtypes.AttributeValue {
	item := map[string]dbtypes.AttributeValue{
		attrRecordID:        &dbtypes.AttributeValueMemberS{Value: rec.RecordID},
		attrObjectName:      &dbtypes.AttributeValueMemberS{Value: rec.ObjectName},
		attrContainer:       &dbtypes.AttributeValueMemberS{Value: rec.Container},
		attrSizeBytes:       &dbtypes.AttributeValueMemberN{Value: strconv.FormatInt(rec.SizeBytes, 10)},
		attrContentType:     &dbtypes.AttributeValueMemberS{Value: rec.ContentType},
		attrFileExtension:   &dbtypes.AttributeValueMemberS{Value: rec.FileExtension},
		attrUploadTimestamp: &dbtypes.AttributeValueMemberS{Value: rec.UploadTimestamp},
		attrProcessedBy:     &dbtypes.AttributeValueMemberS{Value: rec.ProcessedBy},
	}
	if rec.StoreLastModified != nil {
		item[attrStoreLastModified] = &dbtypes.AttributeValueMemberS{Value: *rec.StoreLastModified}
	} else {
		item[attrStoreLastModified] = &dbtypes.AttributeValueMemberNULL{Value: true}
	}
	return item
}

func itemToRecord(item map[string]dbtypes.AttributeValue) (Record, error) {
	id, ok := item[attrRecordID].(*dbtypes.AttributeValueMemberS)
	if !ok || id.Value == "" {
		return Record{}, fmt.Errorf("%w: item without %s", ErrMalformedPage, attrRecordID)
	}

	rec := Record{RecordID: id.Value}
	fields := []struct {
		name string
		dst  *string
	}{
		{attrObjectName, &rec.ObjectName},
		{attrContainer, &rec.Container},
		{attrContentType, &rec.ContentType},
		{attrFileExtension, &rec.FileExtension},
		{attrUploadTimestamp, &rec.UploadTimestamp},
		{attrProcessedBy, &rec.ProcessedBy},
	}
	for _, f := range fields {
		if err := stringAttr(item, f.name, f.dst); err != nil {
			return Record{}, fmt.Errorf("%w: item %q: %v", ErrMalformedPage, rec.RecordID, err)
		}
	}

	size, err := sizeAttr(item[attrSizeBytes])
	if err != nil {
		return Record{}, fmt.Errorf("%w: item %q: %v", ErrMalformedPage, rec.RecordID, err)
	}
	rec.SizeBytes = size

	switch v := item[attrStoreLastModified].(type) {
	case nil, *dbtypes.AttributeValueMemberNULL:
	case *dbtypes.AttributeValueMemberS:
		lastModified := v.Value
		rec.StoreLastModified = &lastModified
	default:
		return Record{}, fmt.Errorf("%w: item %q: %s is not a string", ErrMalformedPage, rec.RecordID, attrStoreLastModified)
	}

	return rec, nil
}

// stringAttr copies a string attribute into dst. Missing and NULL attributes leave dst empty.
func stringAttr(item map[string]dbtypes.AttributeValue, name string, dst *string) error {
	switch v := item[name].(type) {
	case nil, *dbtypes.AttributeValueMemberNULL:
		return nil
	case *dbtypes.AttributeValueMemberS:
		*dst = v.Value
		return nil
	default:
		return fmt.Errorf("%s is not a string", name)
	}
}

// sizeAttr accepts integral numbers, including ones written with a decimal point.
func sizeAttr(av dbtypes.AttributeValue) (int64, error) {
	switch v := av.(type) {
	case nil, *dbtypes.AttributeValueMemberNULL:
		return 0, nil
	case *dbtypes.AttributeValueMemberN:
		if n, err := strconv.ParseInt(v.Value, 10, 64); err == nil {
			if n < 0 {
				return 0, fmt.Errorf("%s %d is negative", attrSizeBytes, n)
			}
			return n, nil
		}
		f, err := strconv.ParseFloat(v.Value, 64)
		if err != nil || f != math.Trunc(f) || f < 0 {
			return 0, fmt.Errorf("%s %q is not a whole number of bytes", attrSizeBytes, v.Value)
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("%s is not a number", attrSizeBytes)
	}
}

func continuationToken(lastKey map[string]dbtypes.AttributeValue) (string, error) {
	if len(lastKey) == 0 {
		return "", nil
	}
	id, ok := lastKey[attrRecordID].(*dbtypes.AttributeValueMemberS)
	if !ok || id.Value == "" {
		return "", fmt.Errorf("%w: continuation key without %s", ErrMalformedPage, attrRecordID)
	}
	return id.Value, nil
}
