package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"university-form-agent/internal/domain"
)

const (
	skPrefixTurn       = "TURN#"
	skMeta             = "META#"
	maxAppendConflicts = 3
)

// ErrAppendConflict is returned when another writer kept winning the race
// for the next turn slot.
var ErrAppendConflict = errors.New("repository: concurrent append conflict")

// dynamodbAPI is the minimal DynamoDB interface required by DynamoStore.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// DynamoStore keeps each turn as its own item under CONV#<id>, numbered by a
// META# counter. The counter and the turn are written in one transaction
// conditioned on the previous count.
//
// A zero ttl writes no ttl attribute, so turns are kept until deleted by
// hand. A positive ttl stamps each item with its append time plus ttl; it is
// meant for tables where idle conversations may be reaped wholesale.
type DynamoStore struct {
	api       dynamodbAPI
	tableName string
	ttl       time.Duration
	now       func() time.Time

	locks sync.Map // conversation id -> *sync.Mutex
}

func NewDynamoStore(api dynamodbAPI, tableName string, ttl time.Duration) (*DynamoStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	if ttl < 0 {
		return nil, errors.New("repository: ttl must not be negative")
	}
	return &DynamoStore{api: api, tableName: tableName, ttl: ttl, now: time.Now}, nil
}

func convPK(conversationID string) string {
	return "CONV#" + conversationID
}

func turnSK(seq int) string {
	return fmt.Sprintf("%s%010d", skPrefixTurn, seq)
}

// Get queries every TURN# item of a conversation in ascending order.
func (s *DynamoStore) Get(ctx context.Context, conversationID string) ([]domain.Turn, bool, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: convPK(conversationID)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixTurn},
		},
		ScanIndexForward: aws.Bool(true),
		ConsistentRead:   aws.Bool(true),
	}

	var turns []domain.Turn
	for {
		out, err := s.api.Query(ctx, in)
		if err != nil {
			return nil, false, fmt.Errorf("repository: Get query: %w", err)
		}
		for _, item := range out.Items {
			turn, err := itemToTurn(item)
			if err != nil {
				return nil, false, fmt.Errorf("repository: Get unmarshal: %w", err)
			}
			turns = append(turns, turn)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
	if len(turns) == 0 {
		return nil, false, nil
	}
	return turns, true, nil
}

// Append writes the next turn. Writers in this process are serialized per
// conversation; writers elsewhere are caught by the transaction condition.
func (s *DynamoStore) Append(ctx context.Context, conversationID string, turn domain.Turn) error {
	if strings.TrimSpace(conversationID) == "" {
		return errors.New("repository: conversation id is required")
	}
	mu := s.lock(conversationID)
	mu.Lock()
	defer mu.Unlock()

	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("repository: Append marshal: %w", err)
	}

	for attempt := 0; attempt < maxAppendConflicts; attempt++ {
		count, err := s.turnCount(ctx, conversationID)
		if err != nil {
			return err
		}
		err = s.writeTurn(ctx, conversationID, count, payload)
		if err == nil {
			return nil
		}
		var canceled *types.TransactionCanceledException
		if !errors.As(err, &canceled) {
			return fmt.Errorf("repository: Append: %w", err)
		}
	}
	return ErrAppendConflict
}

func (s *DynamoStore) lock(conversationID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(conversationID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *DynamoStore) turnCount(ctx context.Context, conversationID string) (int, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: convPK(conversationID)},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, fmt.Errorf("repository: turn count get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return 0, nil
	}
	turns, err := intAttr(out.Item, "turns")
	if err != nil {
		return 0, fmt.Errorf("repository: turn count decode: %w", err)
	}
	return turns, nil
}

func (s *DynamoStore) writeTurn(ctx context.Context, conversationID string, prev int, payload []byte) error {
	now := s.now().UTC()
	pk := convPK(conversationID)

	turnItem := map[string]types.AttributeValue{
		"PK":             &types.AttributeValueMemberS{Value: pk},
		"SK":             &types.AttributeValueMemberS{Value: turnSK(prev + 1)},
		"conversationId": &types.AttributeValueMemberS{Value: conversationID},
		"payload":        &types.AttributeValueMemberS{Value: string(payload)},
		"createdAt":      &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
	}
	metaItem := map[string]types.AttributeValue{
		"PK":             &types.AttributeValueMemberS{Value: pk},
		"SK":             &types.AttributeValueMemberS{Value: skMeta},
		"conversationId": &types.AttributeValueMemberS{Value: conversationID},
		"lastActivity":   &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		"turns":          &types.AttributeValueMemberN{Value: strconv.Itoa(prev + 1)},
	}
	if s.ttl > 0 {
		expiry := &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(s.ttl).Unix(), 10)}
		turnItem["ttl"] = expiry
		metaItem["ttl"] = expiry
	}

	metaCondition := "attribute_not_exists(PK)"
	var (
		metaNames  map[string]string
		metaValues map[string]types.AttributeValue
	)
	if prev > 0 {
		metaCondition = "#turns = :prev"
		metaNames = map[string]string{"#turns": "turns"}
		metaValues = map[string]types.AttributeValue{
			":prev": &types.AttributeValueMemberN{Value: strconv.Itoa(prev)},
		}
	}

	_, err := s.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(s.tableName),
					Item:                turnItem,
					ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
				},
			},
			{
				Put: &types.Put{
					TableName:                 aws.String(s.tableName),
					Item:                      metaItem,
					ConditionExpression:       aws.String(metaCondition),
					ExpressionAttributeNames:  metaNames,
					ExpressionAttributeValues: metaValues,
				},
			},
		},
	})
	return err
}

func itemToTurn(item map[string]types.AttributeValue) (domain.Turn, error) {
	payload, err := strAttr(item, "payload")
	if err != nil {
		return domain.Turn{}, err
	}
	var turn domain.Turn
	if err := json.Unmarshal([]byte(payload), &turn); err != nil {
		return domain.Turn{}, fmt.Errorf("repository: decode turn payload: %w", err)
	}
	return turn, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
