package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/member-cord/internal/domain"
)

// ServerRepo provides typed DynamoDB operations for the servers table.
// PK: guild_id.
type ServerRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewServerRepo(client *dynamodb.Client, tableName string) *ServerRepo {
	return &ServerRepo{client: client, tableName: tableName}
}

func (r *ServerRepo) Get(ctx context.Context, guildID string) (*domain.Server, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("guild_id", guildID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("server not found: %w", domain.ErrNotFound)
	}
	var s domain.Server
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns every stored server. The servers table is one row per
// guild the bot is in, so a full scan stays small.
func (r *ServerRepo) List(ctx context.Context) ([]domain.Server, error) {
	var servers []domain.Server
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Server
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		servers = append(servers, page...)
		if out.LastEvaluatedKey == nil {
			return servers, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// UpsertSynced writes the sync-owned fields (name, icon, slug,
// member_count) and leaves everything an admin configures untouched.
// On first insert the policy toggles start at their defaults via
// if_not_exists, so a re-sync can never clobber settings.
func (r *ServerRepo) UpsertSynced(ctx context.Context, s *domain.Server) error {
	icon, err := attributevalue.Marshal(s.Icon)
	if err != nil {
		return fmt.Errorf("marshal icon: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("guild_id", s.GuildID),
		UpdateExpression: aws.String("SET #n = :name, icon = :icon, slug = :slug, member_count = :mc, updated_at = :now, " +
			"created_at = if_not_exists(created_at, :now), " +
			"verified_count = if_not_exists(verified_count, :zero), " +
			"alt_blocking = if_not_exists(alt_blocking, :t), " +
			"alt_notify = if_not_exists(alt_notify, :t), " +
			"verify_logs = if_not_exists(verify_logs, :t)"),
		ExpressionAttributeNames: map[string]string{"#n": "name"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name": &types.AttributeValueMemberS{Value: s.Name},
			":icon": icon,
			":slug": &types.AttributeValueMemberS{Value: s.Slug},
			":mc":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", s.MemberCount)},
			":now":  &types.AttributeValueMemberS{Value: now},
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":t":    &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	return err
}

func (r *ServerRepo) Update(ctx context.Context, guildID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("guild_id", guildID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}
