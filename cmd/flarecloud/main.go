// Package main 启动应用程序
package main

import (
	"os"

	"github.com/yeisme/flarecloud/pkg/cmd"
)

//	@title			FlareCloud API
//	@version		1.0
//	@description	FlareCloud 是一个简单的文件存储服务：上传、列表、下载、查看详情、删除，并定期清理过期文件。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
