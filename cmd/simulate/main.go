// simulate 无头运行气球引擎并输出统计
//
// 用法:
//
//	go run ./cmd/simulate -duration 30s -seed 7 -fire-every 500ms -trace run.msgpack -png last.png
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/decker502/balloonpop/pkg/config"
	"github.com/decker502/balloonpop/pkg/game"
	"github.com/decker502/balloonpop/pkg/snapshot"
	"github.com/decker502/balloonpop/pkg/trace"
	"github.com/decker502/balloonpop/pkg/types"
	"github.com/decker502/balloonpop/pkg/utils"
	"github.com/decker502/balloonpop/pkg/world"
)

var (
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	configPath = flag.String("config", "", "游戏配置文件路径（为空时使用默认配置）")
	duration   = flag.Duration("duration", 30*time.Second, "模拟时长")
	tickRate   = flag.Int("tick-rate", 0, "每秒帧数（0 表示使用配置）")
	seed       = flag.Int64("seed", 1, "随机种子")
	fireEvery  = flag.Duration("fire-every", 0, "自动射击间隔（0 表示不射击）")
	tracePath  = flag.String("trace", "", "事件轨迹输出文件（msgpack）")
	pngPath    = flag.String("png", "", "最后一帧的 PNG 输出路径")
)

func main() {
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	if err := run(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer) error {
	cfg := config.DefaultGameConfig()
	if *configPath != "" {
		loaded, err := config.LoadGameConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	// 无头模式总是使用模拟时钟
	cfg.Balloons.WallClockTimer = false
	if *tickRate > 0 {
		cfg.Simulation.TickRate = *tickRate
	}

	w, _, err := world.NewWithKinematicWorld(cfg, rand.New(rand.NewSource(*seed)))
	if err != nil {
		return err
	}
	stats := game.NewStatsManager(nil)
	w.Subscribe(stats)

	var recorder *trace.Recorder
	if *tracePath != "" {
		f, err := os.Create(*tracePath)
		if err != nil {
			return fmt.Errorf("create trace: %w", err)
		}
		defer f.Close()
		buf := bufio.NewWriter(f)
		defer buf.Flush()
		recorder = trace.NewRecorder(buf)
		w.Subscribe(recorder)
	}

	counts := make(map[game.EventType]int)
	w.Subscribe(game.EventSinkFunc(func(ev game.EngineEvent) {
		counts[ev.Type]++
	}))

	dt := cfg.TickDuration()
	var sinceFire time.Duration
	start := time.Now()
	for w.Clock().Now() < *duration {
		if *fireEvery > 0 {
			sinceFire += dt
			if sinceFire >= *fireEvery {
				sinceFire = 0
				if dir, ok := aimAtOldest(w); ok {
					w.Fire(dir)
				}
			}
		}
		w.Step(dt)
	}
	elapsed := time.Since(start)

	idle, active, bursting := w.Balloons().Counts()
	session := stats.Session()
	fmt.Fprintf(out, "simulated %s in %d ticks (%s wall)\n", w.Clock().Now(), w.Clock().Tick(), elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "balloons: idle=%d active=%d bursting=%d\n", idle, active, bursting)
	fmt.Fprintf(out, "shots=%d pops=%d confetti=%d\n", session.Shots, session.Pops, w.Confetti().ActiveCount())
	printCounts(out, counts)

	if recorder != nil {
		if err := recorder.Err(); err != nil {
			return err
		}
		fmt.Fprintf(out, "trace: %d events -> %s\n", recorder.Written(), *tracePath)
	}

	if *pngPath != "" {
		var frame game.RenderFrame
		w.RenderBuffer().Snapshot(&frame)
		cam := utils.NewCamera(cfg.Camera, config.GameWindowWidth, config.GameWindowHeight)
		if err := snapshot.NewRenderer(cam).Save(*pngPath, &frame); err != nil {
			return err
		}
		fmt.Fprintf(out, "snapshot: %s\n", *pngPath)
	}
	return nil
}

// aimAtOldest 瞄准激活时间最早的活动气球
func aimAtOldest(w *world.World) (types.Vec3, bool) {
	pool := w.Balloons()
	best := -1
	var bestAt time.Duration
	for i := 0; i < pool.Capacity(); i++ {
		slot, _ := pool.Slot(i)
		if slot.State != types.StateActive {
			continue
		}
		if best < 0 || slot.ActivatedAt < bestAt {
			best, bestAt = i, slot.ActivatedAt
		}
	}
	if best < 0 {
		return types.Vec3{}, false
	}
	return pool.Position(best).Sub(w.FireSystem().Origin()), true
}

func printCounts(out io.Writer, counts map[game.EventType]int) {
	typesSeen := make([]game.EventType, 0, len(counts))
	for t := range counts {
		typesSeen = append(typesSeen, t)
	}
	sort.Slice(typesSeen, func(i, j int) bool { return typesSeen[i] < typesSeen[j] })
	for _, t := range typesSeen {
		fmt.Fprintf(out, "  %-16s %d\n", t, counts[t])
	}
}
