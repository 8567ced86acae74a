package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/astralvault/page-sync-service/client/entity"
	"github.com/astralvault/page-sync-service/client/gateway"
	"github.com/astralvault/page-sync-service/client/snapshot"
	"github.com/astralvault/page-sync-service/client/store"
	"github.com/astralvault/page-sync-service/client/treeview"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type clientFlags struct {
	server   string
	email    string
	password string
	snapshot string
	realtime bool
	watch    int
}

func init() {
	clientEnv := new(clientFlags)

	var clientCommand = &cobra.Command{
		Use:   "client",
		Short: "Connect to a server, sync the page tree and print it. // 连接服务端，同步页面树并打印。",
		Run: func(cmd *cobra.Command, args []string) {
			logger := bootstrapLogger
			ctx := context.Background()

			var gw gateway.Gateway
			rest := gateway.NewRESTGateway(clientEnv.server, "")
			if clientEnv.realtime {
				gw = gateway.NewRealtimeGateway(clientEnv.server, "", logger)
			} else {
				gw = rest
			}

			s := store.New(gw,
				store.WithLogger(logger),
				store.WithReporter(func(op string, err error) {
					logger.Warn("sync operation failed", zap.String("op", op), zap.Error(err))
				}),
				store.WithSnapshotWriter(func(user *entity.User, pages []*entity.Page) {
					if clientEnv.snapshot == "" {
						return
					}
					if err := snapshot.Save(clientEnv.snapshot, &snapshot.Snapshot{User: user, Pages: pages}); err != nil {
						logger.Warn("snapshot save failed", zap.Error(err))
					}
				}),
			)
			defer s.Close()

			// 先从本地快照恢复，避免首次拉取期间的空白状态
			if clientEnv.snapshot != "" {
				if snap, err := snapshot.Load(clientEnv.snapshot); err == nil && snap != nil {
					s.Hydrate(snap.User, snap.Pages)
					logger.Info("state restored from snapshot",
						zap.Int("pages", len(snap.Pages)),
					)
				}
			}

			// 登录
			var login *entity.User
			var err error
			if clientEnv.realtime {
				login, err = gw.(*gateway.RealtimeGateway).Login(ctx, clientEnv.email, clientEnv.password)
			} else {
				login, err = rest.Login(ctx, clientEnv.email, clientEnv.password)
			}
			if err != nil {
				logger.Error("login failed", zap.Error(err))
				return
			}
			logger.Info("logged in", zap.Int64("uid", login.UID), zap.String("email", login.Email))

			s.SetUser(login)
			s.Load(ctx)

			unsubscribe := s.SubscribeRemoteChanges(ctx)
			defer unsubscribe()

			printTree(s.Pages())

			if clientEnv.watch > 0 {
				logger.Info("watching for remote changes", zap.Int("seconds", clientEnv.watch))
				time.Sleep(time.Duration(clientEnv.watch) * time.Second)
				printTree(s.Pages())
			}
		},
	}

	rootCmd.AddCommand(clientCommand)
	fs := clientCommand.Flags()
	fs.StringVarP(&clientEnv.server, "server", "s", "http://127.0.0.1:9000", "server base url")
	fs.StringVarP(&clientEnv.email, "email", "u", "", "login email")
	fs.StringVarP(&clientEnv.password, "password", "P", "", "login password")
	fs.StringVar(&clientEnv.snapshot, "snapshot", "", "local snapshot file path")
	fs.BoolVar(&clientEnv.realtime, "realtime", false, "subscribe to the websocket push feed")
	fs.IntVar(&clientEnv.watch, "watch", 0, "keep watching remote changes for N seconds")
}

// printTree 按层级打印页面树
func printTree(pages []*entity.Page) {
	fmt.Printf("%d pages:\n", len(pages))
	for _, root := range treeview.Roots(pages) {
		printSubtree(pages, root, 0)
	}
}

func printSubtree(pages []*entity.Page, node *entity.Page, depth int) {
	title := node.Title
	if title == "" {
		title = entity.DefaultTitle
	}
	fmt.Printf("%s- %s (%s, ~%d words)\n", strings.Repeat("  ", depth), title, node.ID, treeview.WordCount(node))
	for _, child := range treeview.Children(pages, node.ID) {
		printSubtree(pages, child, depth+1)
	}
}
