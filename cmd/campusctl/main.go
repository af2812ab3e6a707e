// campusctl 命令行查询校园招聘平台数据，用于调试 SDK 与缓存策略。
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
