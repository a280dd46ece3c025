package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/growyourneed/crm_backend/utils"
)

var (
	client *mongo.Client
	db     *mongo.Database
)

// InitMongoDB 初始化MongoDB连接
func InitMongoDB(uri, dbName string) error {
	// 设置连接超时
	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 创建客户端
	var err error
	clientOptions := options.Client().ApplyURI(uri)
	client, err = mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return fmt.Errorf("连接MongoDB失败: %w", err)
	}

	// 检查连接
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping MongoDB失败: %w", err)
	}

	// 选择数据库
	db = client.Database(dbName)
	utils.Logger.Info().Str("database", dbName).Msg("已连接到MongoDB")

	return nil
}

// CloseMongoDB 关闭MongoDB连接
func CloseMongoDB() {
	if client != nil {
		if err := client.Disconnect(context.Background()); err != nil {
			utils.Logger.Error().Err(err).Msg("断开MongoDB连接失败")
			return
		}
		utils.Logger.Info().Msg("已断开MongoDB连接")
	}
}

// InitializeCollections 初始化数据库集合
func InitializeCollections() error {
	ctx := context.Background()
	for _, collName := range AllCollections {
		// 检查集合是否存在
		collExists, err := collectionExists(ctx, collName)
		if err != nil {
			return fmt.Errorf("检查集合失败: %w", err)
		}

		// 如果不存在则创建
		if !collExists {
			if err := db.CreateCollection(ctx, collName); err != nil {
				return fmt.Errorf("创建集合失败: %w", err)
			}
			utils.Logger.Info().Str("collection", collName).Msg("创建集合成功")
		}
	}

	return nil
}

// collectionExists 检查集合是否存在
func collectionExists(ctx context.Context, collName string) (bool, error) {
	collections, err := db.ListCollectionNames(ctx, bson.M{"name": collName})
	if err != nil {
		return false, err
	}

	for _, name := range collections {
		if name == collName {
			return true, nil
		}
	}

	return false, nil
}

// ExecuteDbOperation 执行数据库操作，提供错误处理和重试机制。
// ErrNotFound属于正常业务结果，原样透传不重试；
// 重试耗尽后包装为AppError，向上只暴露统一的失败消息。
func ExecuteDbOperation(operation func() (interface{}, error), retries int) (interface{}, error) {
	if retries <= 0 {
		retries = 3
	}

	var lastErr error
	for i := 0; i < retries; i++ {
		result, err := operation()
		if err == nil {
			return result, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}

		lastErr = err
		utils.Logger.Error().Err(err).Msgf("数据库操作失败，重试 (%d/%d)", i+1, retries)

		// 如果是不可重试的错误，立即返回
		if !isRetryableError(err) {
			break
		}

		// 延迟后重试
		time.Sleep(time.Duration(500*(i+1)) * time.Millisecond)
	}

	return nil, utils.NewAppError("数据库操作失败", 500, lastErr)
}

// isRetryableError 判断错误是否可重试
func isRetryableError(err error) bool {
	// MongoDB可重试错误代码
	retryableCodes := map[int]bool{
		6:     true, // HostUnreachable
		7:     true, // HostNotFound
		89:    true, // NetworkTimeout
		91:    true, // ShutdownInProgress
		189:   true, // PrimarySteppedDown
		10107: true, // NotMaster
		13436: true, // NotMasterNoSlaveOk
		11600: true, // InterruptedAtShutdown
		11602: true, // InterruptedDueToReplStateChange
		10058: true, // ConnectionReset
	}

	if cmdErr, ok := err.(mongo.CommandError); ok {
		return retryableCodes[int(cmdErr.Code)]
	}

	return isNetworkError(err)
}

// isNetworkError 检查是否是网络错误
func isNetworkError(err error) bool {
	errMsg := strings.ToLower(err.Error())
	networkErrors := []string{
		"connection refused",
		"connection reset",
		"connection closed",
		"no reachable servers",
		"timeout",
		"context deadline exceeded",
		"server selection error",
	}

	for _, ne := range networkErrors {
		if strings.Contains(errMsg, ne) {
			return true
		}
	}

	return false
}

// MongoStore 基于MongoDB的记录存储实现
type MongoStore struct{}

// NewMongoStore 创建MongoDB存储客户端，需先调用InitMongoDB
func NewMongoStore() *MongoStore {
	return &MongoStore{}
}

// Create 插入一条记录，以ObjectID的hex串作为记录ID
func (s *MongoStore) Create(ctx context.Context, collection string, doc interface{}) (string, error) {
	id := primitive.NewObjectID().Hex()

	// 统一使用字符串_id，文档先降为bson.M再注入_id
	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("序列化文档失败: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return "", fmt.Errorf("反序列化文档失败: %w", err)
	}
	m["_id"] = id

	if _, err := ExecuteDbOperation(func() (interface{}, error) {
		return db.Collection(collection).InsertOne(ctx, m)
	}, 3); err != nil {
		return "", err
	}
	utils.LogDbOperation("create", collection, nil, id)
	return id, nil
}

// Update 对指定记录做$set部分更新
func (s *MongoStore) Update(ctx context.Context, collection, id string, set bson.M) error {
	result, err := ExecuteDbOperation(func() (interface{}, error) {
		return db.Collection(collection).UpdateOne(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": set},
		)
	}, 3)
	if err != nil {
		return err
	}
	if result.(*mongo.UpdateResult).MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除指定记录
func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	result, err := ExecuteDbOperation(func() (interface{}, error) {
		return db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	}, 3)
	if err != nil {
		return err
	}
	if result.(*mongo.DeleteResult).DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetOne 按ID取单条记录
func (s *MongoStore) GetOne(ctx context.Context, collection, id string, out interface{}) error {
	_, err := ExecuteDbOperation(func() (interface{}, error) {
		err := db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}, 3)
	return err
}

// GetFullList 取满足过滤条件的全部记录
func (s *MongoStore) GetFullList(ctx context.Context, collection string, filter bson.M, sort string, out interface{}) error {
	if filter == nil {
		filter = bson.M{}
	}
	findOptions := options.Find()
	if sortDoc := parseSort(sort); sortDoc != nil {
		findOptions.SetSort(sortDoc)
	}

	_, err := ExecuteDbOperation(func() (interface{}, error) {
		cursor, err := db.Collection(collection).Find(ctx, filter, findOptions)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)
		return nil, cursor.All(ctx, out)
	}, 3)
	return err
}

// GetList 分页查询
func (s *MongoStore) GetList(ctx context.Context, collection string, filter bson.M, sort string, page, perPage int, out interface{}) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	coll := db.Collection(collection)
	total, err := s.Count(ctx, collection, filter)
	if err != nil {
		return 0, err
	}

	findOptions := options.Find().
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))
	if sortDoc := parseSort(sort); sortDoc != nil {
		findOptions.SetSort(sortDoc)
	}

	if _, err := ExecuteDbOperation(func() (interface{}, error) {
		cursor, err := coll.Find(ctx, filter, findOptions)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)
		return nil, cursor.All(ctx, out)
	}, 3); err != nil {
		return 0, err
	}
	return total, nil
}

// Count 统计满足条件的记录数
func (s *MongoStore) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	total, err := ExecuteDbOperation(func() (interface{}, error) {
		return db.Collection(collection).CountDocuments(ctx, filter)
	}, 3)
	if err != nil {
		return 0, err
	}
	return total.(int64), nil
}

// parseSort 解析"-created"风格的排序串
func parseSort(sort string) bson.D {
	if sort == "" {
		return nil
	}
	order := 1
	field := sort
	if strings.HasPrefix(sort, "-") {
		order = -1
		field = sort[1:]
	}
	return bson.D{{Key: field, Value: order}}
}
