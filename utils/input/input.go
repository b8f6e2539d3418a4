package input

import (
	"context"
	"fmt"
	"os"

	"git.fiblab.net/general/common/v2/cache"
	"git.fiblab.net/general/common/v2/mongoutil"
	"git.fiblab.net/general/common/v2/protoutil"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/agentsociety-mapping/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v2"
)

// Input 输入数据
// 功能：存储mapping运行所需的输入数据
// 说明：Mapping为实体生成配置（必须），Map为路网（可选，用于提取信号灯组拓扑与校验位置）
type Input struct {
	Mapping *config.Mapping
	Map     *mapv2.Map
}

// Init 加载输入数据
// 功能：根据配置加载实体生成配置与路网
// 参数：c-配置对象，cacheDir-路网缓存目录
// 返回：加载完成的输入数据
// 算法说明：
// 1. 缓存检查：验证缓存目录的有效性
// 2. 数据库连接：如果配置了MongoDB则建立连接
// 3. 实体生成配置：优先从YAML文件加载，否则从MongoDB集合中读取一个文档
// 4. 路网：优先从文件加载，否则从MongoDB（支持缓存）加载
// 5. 校验：路网存在时检查配置中的位置是否在路网中
// 说明：加载失败时直接panic，mapping无法在缺少配置的情况下运行
func Init(c config.Config, cacheDir string) *Input {
	useCache := preCheckCache(cacheDir)
	if !useCache {
		cacheDir = ""
	}

	var client *mongo.Client
	if c.Input.URI != "" {
		client = mongoutil.NewClient(c.Input.URI)
		defer client.Disconnect(context.Background())
	}

	res := &Input{}
	var err error
	if c.Input.Mapping.File != "" {
		res.Mapping, err = LoadMappingFile(c.Input.Mapping.File)
	} else if client != nil {
		res.Mapping, err = LoadMappingFromMongo(context.Background(), mongoutil.GetMongoColl(client, c.Input.Mapping))
	} else {
		err = fmt.Errorf("neither mapping file nor mongodb uri is specified")
	}
	if err != nil {
		log.Panicf("failed to load mapping: %v", err)
	}

	if c.Input.Map != nil {
		if c.Input.Map.File != "" {
			var m mapv2.Map
			if err := protoutil.UnmarshalFromFile(&m, c.Input.Map.File); err != nil {
				log.Panicf("failed to load map from file: %v", err)
			}
			res.Map = &m
		} else {
			if client == nil {
				log.Panicf("map %s.%s needs mongodb uri", c.Input.Map.DB, c.Input.Map.Col)
			}
			res.Map = mustLoad[mapv2.Map](client, *c.Input.Map, cacheDir)
		}
		log.Infof("Lane: %v, Junction: %v, AOI: %v", len(res.Map.Lanes), len(res.Map.Junctions), len(res.Map.Aois))
		for _, e := range CheckPositions(res.Mapping, newMapIDs(res.Map)) {
			log.Warn(e)
		}
	}
	return res
}

// LoadMappingFile 从YAML文件加载实体生成配置（严格模式，未知字段报错）
func LoadMappingFile(path string) (*config.Mapping, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseMapping(file)
}

// ParseMapping 解析YAML格式的实体生成配置
func ParseMapping(data []byte) (*config.Mapping, error) {
	var m config.Mapping
	if err := yaml.UnmarshalStrict(data, &m); err != nil {
		return nil, fmt.Errorf("invalid mapping config: %w", err)
	}
	return &m, nil
}

// documentFinder MongoDB集合的查询接口
type documentFinder interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
}

// LoadMappingFromMongo 从MongoDB集合中读取实体生成配置
// 说明：集合中只应有一个文档，有多个时使用第一个
func LoadMappingFromMongo(ctx context.Context, coll documentFinder) (*config.Mapping, error) {
	var m config.Mapping
	if err := coll.FindOne(ctx, bson.D{}).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to find mapping document: %w", err)
	}
	return &m, nil
}

// mustLoad 必须加载数据（泛型函数）
// 功能：从MongoDB或缓存中加载protobuf数据
// 参数：client-MongoDB客户端，inputPath-输入路径配置，cacheDir-缓存目录
// 返回：加载的数据对象
// 算法说明：
// 1. 获取MongoDB集合：根据输入路径配置获取集合
// 2. 定义下载函数：如果不需要仅缓存则定义下载逻辑
// 3. 缓存加载：使用缓存机制加载数据
// 4. 错误处理：如果加载失败则panic
func mustLoad[T any, PT interface {
	proto.Message
	*T
}](
	client *mongo.Client,
	inputPath config.InputPath,
	cacheDir string,
) (res PT) {
	coll := mongoutil.GetMongoColl(client, inputPath)
	var downloadFunc func() PT
	var err error
	if !inputPath.OnlyCache {
		downloadFunc = func() PT {
			pb, errs := mongoutil.DownloadPbFromMongo[T, PT](context.Background(), coll, nil, nil)
			if len(errs) > 0 {
				for _, err := range errs {
					log.Errorf("failed to download: %v", err)
				}
				log.Panicln("failed to download")
			}
			return pb
		}
	}
	log.Infof("start fetching from %s.%s", inputPath.DB, inputPath.Col)
	res, err = cache.LoadWithCache(cacheDir, inputPath, downloadFunc)
	if err != nil {
		log.Panicf("failed to load with cache: %v", err)
	}
	log.Infof("finish fetching from %s.%s", inputPath.DB, inputPath.Col)
	return
}
