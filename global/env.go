package global

import (
	"github.com/astralvault/page-sync-service/pkg/fileurl"
)

var (
	// 程序执行目录
	ROOT          string
	Name          string = "Astral Page Sync Service"
	WebClientName string = "Web"
)

func init() {

	filename := fileurl.GetExePath()
	ROOT = filename + "/"

}
