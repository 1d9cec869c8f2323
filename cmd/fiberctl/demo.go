package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/corestack/fiberrt/runtime"
)

func newDemoCommand() *cobra.Command {
	var workers int
	var sleep time.Duration

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "spawn a handful of worker fibers that sleep and join",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(workers, sleep)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 4, "number of worker fibers to spawn")
	cmd.Flags().DurationVar(&sleep, "sleep", 50*time.Millisecond, "how long each worker sleeps before finishing")

	return cmd
}

func runDemo(workers int, sleep time.Duration) error {
	sched := runtime.Current()
	mainFiber := sched.Main()

	group := runtime.NewFiberGroup("demo")
	for i := 0; i < workers; i++ {
		id := i
		f := sched.Spawn(fmt.Sprintf("worker-%d", id), func(self *runtime.FiberControl) {
			sched.WaitUntil(self, time.Now().Add(sleep))
			fmt.Printf("%s: done after %s\n", self.DebugName(), sleep)
		})
		group.Add(f)
	}

	group.WaitAll(mainFiber)

	stats := sched.Stats()
	fmt.Printf("fibers started=%d terminated=%d destroyed=%d\n",
		stats.FibersStarted, stats.FibersTerminated, stats.FibersDestroyed)

	runtime.Shutdown()
	return nil
}
