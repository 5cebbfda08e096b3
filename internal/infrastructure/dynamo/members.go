package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/member-cord/internal/domain"
)

// MemberRepo provides typed DynamoDB operations for the verified_members
// table. PK: guild_id, SK: discord_id — PutItem on the same composite key
// overwrites, which is exactly the upsert the verification flow needs.
type MemberRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMemberRepo(client *dynamodb.Client, tableName string) *MemberRepo {
	return &MemberRepo{client: client, tableName: tableName}
}

func (r *MemberRepo) Put(ctx context.Context, m *domain.VerifiedMember) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal verified member: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *MemberRepo) Get(ctx context.Context, guildID, discordID string) (*domain.VerifiedMember, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("guild_id", guildID, "discord_id", discordID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("verified member not found: %w", domain.ErrNotFound)
	}
	var m domain.VerifiedMember
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByGuild returns every verified member of a guild in key order.
func (r *MemberRepo) ListByGuild(ctx context.Context, guildID string) ([]domain.VerifiedMember, error) {
	return r.query(ctx, guildID, nil, nil)
}

// ListByGuildAndIP returns the guild's members whose stored ip_address
// equals ip. The sort key cannot appear in a filter expression, so any
// exclusion by discord_id is up to the caller.
func (r *MemberRepo) ListByGuildAndIP(ctx context.Context, guildID, ip string) ([]domain.VerifiedMember, error) {
	filter := aws.String("ip_address = :ip")
	values := map[string]types.AttributeValue{
		":ip": &types.AttributeValueMemberS{Value: ip},
	}
	return r.query(ctx, guildID, filter, values)
}

// CountByGuild returns the live number of verified-member rows for a
// guild. Used to recompute verified_count instead of incrementing, so
// concurrent verifications converge on the true value.
func (r *MemberRepo) CountByGuild(ctx context.Context, guildID string) (int, error) {
	count := 0
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("guild_id = :g"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":g": &types.AttributeValueMemberS{Value: guildID},
			},
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, err
		}
		count += int(out.Count)
		if out.LastEvaluatedKey == nil {
			return count, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// ListAll scans the whole table; the dashboard members view without a
// guild filter is the only caller.
func (r *MemberRepo) ListAll(ctx context.Context) ([]domain.VerifiedMember, error) {
	var members []domain.VerifiedMember
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.VerifiedMember
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		members = append(members, page...)
		if out.LastEvaluatedKey == nil {
			return members, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *MemberRepo) query(ctx context.Context, guildID string, filter *string, extraValues map[string]types.AttributeValue) ([]domain.VerifiedMember, error) {
	values := map[string]types.AttributeValue{
		":g": &types.AttributeValueMemberS{Value: guildID},
	}
	for k, v := range extraValues {
		values[k] = v
	}
	var members []domain.VerifiedMember
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    aws.String("guild_id = :g"),
			FilterExpression:          filter,
			ExpressionAttributeValues: values,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.VerifiedMember
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		members = append(members, page...)
		if out.LastEvaluatedKey == nil {
			return members, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
