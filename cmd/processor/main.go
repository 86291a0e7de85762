package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"batch-transfer-sol/internal/config"
	"batch-transfer-sol/internal/logic/job"
	"batch-transfer-sol/internal/pkg/logger"
	"batch-transfer-sol/internal/svc"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
)

var (
	configFile = flag.String("f", "etc/processor.yaml", "the config file")
	releaseIDs = flag.String("release", "", "comma separated job ids to release after manual review")
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
			code = 2
		}
	}()

	flag.Parse()
	if flag.NArg() == 0 && *releaseIDs == "" {
		logx.Error("usage: processor -f etc/processor.yaml [-release id1,id2] job1.yaml [job2.yaml ...]")
		return 2
	}

	var c config.ProcessorConfig
	conf.MustLoad(*configFile, &c)

	if err := logger.Init(c.LogConf.ToLogOption()); err != nil {
		logx.Errorf("init logger: %v", err)
		return 2
	}
	defer logger.Sync()

	serviceContext, err := svc.NewServiceContext(c)
	if err != nil {
		logx.Errorf("init service context: %v", err)
		return 2
	}
	defer func() {
		if err := serviceContext.Close(); err != nil {
			logx.Errorf("%v", err)
		}
	}()

	// 收到退出信号后不再开始新的任务；已开始的批次由 ctx 取消中止
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	failed := 0
	// 先释放人工确认过的任务，之后同一次运行中可以重新提交
	for _, id := range strings.Split(*releaseIDs, ",") {
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		if err := serviceContext.Runner.Release(ctx, id); err != nil {
			logx.Errorf("release %s: %v", id, err)
			failed++
			continue
		}
		logx.Infof("job %s released", id)
	}

	for _, path := range flag.Args() {
		if ctx.Err() != nil {
			logx.Infof("shutting down, %s not started", path)
			failed++
			continue
		}

		j, err := job.LoadJob(path)
		if err != nil {
			logx.Errorf("load %s: %v", path, err)
			failed++
			continue
		}

		err = serviceContext.Runner.Run(ctx, j)
		switch {
		case err == nil:
			logx.Infof("job %s ok", j.ID)
		case errors.Is(err, job.ErrAlreadyProcessed):
			logx.Infof("job %s skipped: already processed", j.ID)
		default:
			logx.Errorf("job %s: %v", j.ID, err)
			failed++
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}
