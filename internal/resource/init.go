package resource

import "compress-bot/pkg/manager"

func init() {
	// 注册资源插件
	manager.RegisterResourcePlugin(&RedisResourcePlugin{})
	manager.RegisterResourcePlugin(&MinioResourcePlugin{})
}
