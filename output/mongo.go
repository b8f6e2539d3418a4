package output

import (
	"context"
	"fmt"
	"time"

	"github.com/tsinghua-fib-lab/agentsociety-mapping/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// inserter MongoDB集合的写入接口
type inserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// MongoEmitter 将交互消息写入MongoDB集合
// 功能：每条消息写入一个文档{type, time, data}，供其他联邦成员或离线分析读取
type MongoEmitter struct {
	coll    inserter
	timeout time.Duration
}

// NewMongoEmitter 创建MongoDB写入器
func NewMongoEmitter(coll *mongo.Collection) *MongoEmitter {
	return newMongoEmitter(coll)
}

func newMongoEmitter(coll inserter) *MongoEmitter {
	return &MongoEmitter{coll: coll, timeout: defaultTimeout}
}

func (e *MongoEmitter) Trigger(ia entity.Interaction) error {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	doc := bson.D{
		{Key: "type", Value: string(ia.Type())},
		{Key: "time", Value: ia.GetTime()},
		{Key: "data", Value: ia},
	}
	if _, err := e.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert %s: %w", ia.Type(), err)
	}
	return nil
}
