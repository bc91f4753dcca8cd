package dynamodb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dreschagin/megalith-dashboard/internal/domain/entity"
	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
)

const (
	// все намерения лежат в одной партиции, сортировка по времени записи
	intentPartition = "INTENTS"

	attrPK          = "PK"
	attrSK          = "SK"
	attrID          = "id"
	attrAction      = "action"
	attrAnomaly     = "anomaly"
	attrDescription = "description"
	attrRecordedAt  = "recorded_at"
	attrExpiresAt   = "expires_at"
)

type Config struct {
	TableName       string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	StrongReads     bool
	// TTL записи (0 - хранить бессрочно)
	RetentionDays int
}

// dynamoAPI подмножество клиента, которое использует repository
type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// IntentRepository реализует repository.IntentRepository поверх DynamoDB
type IntentRepository struct {
	client        dynamoAPI
	tableName     string
	strongReads   bool
	retentionDays int
}

func NewIntentRepository(ctx context.Context, cfg Config) (*IntentRepository, error) {
	if strings.TrimSpace(cfg.TableName) == "" {
		return nil, fmt.Errorf("dynamodb table name is required")
	}

	if strings.TrimSpace(cfg.Region) == "" {
		cfg.Region = "us-east-1"
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	accessKeyID := strings.TrimSpace(cfg.AccessKeyID)
	secretAccessKey := strings.TrimSpace(cfg.SecretAccessKey)
	if accessKeyID != "" || secretAccessKey != "" {
		if accessKeyID == "" || secretAccessKey == "" {
			return nil, fmt.Errorf("both dynamodb access key id and secret access key are required for static credentials")
		}
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws config for dynamodb: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(options *dynamodb.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			options.BaseEndpoint = &endpoint
		}
	})

	return newIntentRepository(client, cfg), nil
}

func newIntentRepository(client dynamoAPI, cfg Config) *IntentRepository {
	return &IntentRepository{
		client:        client,
		tableName:     strings.TrimSpace(cfg.TableName),
		strongReads:   cfg.StrongReads,
		retentionDays: cfg.RetentionDays,
	}
}

// Save сохраняет намерение
func (r *IntentRepository) Save(ctx context.Context, intent entity.Intent) error {
	item, err := r.toItem(intent)
	if err != nil {
		return err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &r.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamodb put intent failed: %w", err)
	}

	return nil
}

// FindRecent возвращает последние limit намерений, новые в конце
func (r *IntentRepository) FindRecent(ctx context.Context, limit int) ([]entity.Intent, error) {
	input := r.partitionQuery()
	input.ScanIndexForward = boolPointer(false)
	if limit > 0 {
		input.Limit = int32Pointer(int32(limit))
	}

	intents := make([]entity.Intent, 0)
	for {
		output, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("dynamodb query failed: %w", err)
		}

		for _, raw := range output.Items {
			intent, err := fromItem(raw)
			if err != nil {
				return nil, err
			}
			intents = append(intents, intent)
		}

		if len(output.LastEvaluatedKey) == 0 || (limit > 0 && len(intents) >= limit) {
			break
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}

	if limit > 0 && len(intents) > limit {
		intents = intents[:limit]
	}

	// Query вернул новые первыми
	for i, j := 0, len(intents)-1; i < j; i, j = i+1, j-1 {
		intents[i], intents[j] = intents[j], intents[i]
	}

	return intents, nil
}

// CountByAction возвращает количество намерений указанного типа
func (r *IntentRepository) CountByAction(ctx context.Context, action valueobject.ResponseAction) (int, error) {
	input := r.partitionQuery()
	input.Select = types.SelectCount
	filter := "#action = :action"
	input.FilterExpression = &filter
	input.ExpressionAttributeNames["#action"] = attrAction
	input.ExpressionAttributeValues[":action"] = &types.AttributeValueMemberS{Value: action.String()}

	total := 0
	for {
		output, err := r.client.Query(ctx, input)
		if err != nil {
			return 0, fmt.Errorf("dynamodb count query failed: %w", err)
		}
		total += int(output.Count)

		if len(output.LastEvaluatedKey) == 0 {
			return total, nil
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
}

func (r *IntentRepository) partitionQuery() *dynamodb.QueryInput {
	keyCondition := "#pk = :pk"
	return &dynamodb.QueryInput{
		TableName:              &r.tableName,
		ConsistentRead:         boolPointer(r.strongReads),
		KeyConditionExpression: &keyCondition,
		ExpressionAttributeNames: map[string]string{
			"#pk": attrPK,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: intentPartition},
		},
	}
}

func (r *IntentRepository) toItem(intent entity.Intent) (map[string]types.AttributeValue, error) {
	id := strings.TrimSpace(intent.ID)
	if id == "" {
		return nil, fmt.Errorf("intent id is required")
	}
	if intent.Action == "" {
		return nil, fmt.Errorf("intent action is required")
	}

	recordedAt := intent.RecordedAt.UTC()
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	recordedAtMS := recordedAt.UnixMilli()

	item := map[string]types.AttributeValue{
		attrPK:          &types.AttributeValueMemberS{Value: intentPartition},
		attrSK:          &types.AttributeValueMemberS{Value: buildSK(recordedAtMS, id)},
		attrID:          &types.AttributeValueMemberS{Value: id},
		attrAction:      &types.AttributeValueMemberS{Value: intent.Action.String()},
		attrAnomaly:     &types.AttributeValueMemberS{Value: intent.Anomaly.String()},
		attrDescription: &types.AttributeValueMemberS{Value: intent.Description},
		attrRecordedAt:  &types.AttributeValueMemberN{Value: strconv.FormatInt(recordedAtMS, 10)},
	}

	if r.retentionDays > 0 {
		expiresAt := recordedAt.Add(time.Duration(r.retentionDays) * 24 * time.Hour)
		item[attrExpiresAt] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt.Unix(), 10)}
	}

	return item, nil
}

func fromItem(item map[string]types.AttributeValue) (entity.Intent, error) {
	id, err := attrString(item, attrID)
	if err != nil {
		return entity.Intent{}, err
	}
	action, err := attrString(item, attrAction)
	if err != nil {
		return entity.Intent{}, err
	}
	recordedAtMS, err := attrInt64(item, attrRecordedAt)
	if err != nil {
		return entity.Intent{}, err
	}

	return entity.Intent{
		ID:          id,
		Action:      valueobject.ResponseAction(action),
		Anomaly:     valueobject.AnomalyKind(optionalString(item, attrAnomaly)),
		Description: optionalString(item, attrDescription),
		RecordedAt:  time.UnixMilli(recordedAtMS).UTC(),
	}, nil
}

func buildSK(recordedAtMS int64, id string) string {
	return fmt.Sprintf("TS#%013d#ID#%s", recordedAtMS, id)
}

func attrString(item map[string]types.AttributeValue, name string) (string, error) {
	raw, ok := item[name]
	if !ok {
		return "", fmt.Errorf("missing attribute %s", name)
	}
	value, ok := raw.(*types.AttributeValueMemberS)
	if !ok || strings.TrimSpace(value.Value) == "" {
		return "", fmt.Errorf("invalid attribute %s", name)
	}
	return value.Value, nil
}

func optionalString(item map[string]types.AttributeValue, name string) string {
	raw, ok := item[name]
	if !ok {
		return ""
	}
	value, ok := raw.(*types.AttributeValueMemberS)
	if !ok {
		return ""
	}
	return value.Value
}

func attrInt64(item map[string]types.AttributeValue, name string) (int64, error) {
	raw, ok := item[name]
	if !ok {
		return 0, fmt.Errorf("missing attribute %s", name)
	}
	value, ok := raw.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("invalid attribute %s", name)
	}
	parsed, err := strconv.ParseInt(value.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid attribute %s: %w", name, err)
	}
	return parsed, nil
}

func boolPointer(v bool) *bool {
	return &v
}

func int32Pointer(v int32) *int32 {
	return &v
}
