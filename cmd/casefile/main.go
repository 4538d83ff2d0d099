// Package main 启动 casefile 服务.
package main

import (
	"fmt"
	"os"

	"github.com/yeisme/casefile/pkg/cmd"
)

//	@title			Casefile API
//	@version		1.0
//	@description	患者病历文档的上传、版本、元数据维护、归档与审计.

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	yeisme
//	@contact.email	yefun2004@gmail.com

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
