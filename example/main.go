package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	scache "SCache"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("c", "", "Config file")
	port := flag.Int("p", 0, "Port, overrides the config address")
	flag.Parse()

	cfg := scache.DefaultConfig
	if *configPath != "" {
		var err error
		if cfg, err = scache.LoadConfig(*configPath); err != nil {
			log.Fatal("failed to load config: ", err)
		}
	}
	if *port != 0 {
		cfg.Addr = fmt.Sprintf("127.0.0.1:%d", *port)
	}
	if len(cfg.Caches) == 0 {
		cfg.Caches = []string{"test"}
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal("invalid log level: ", err)
	}
	logrus.SetLevel(level)

	opts, err := cfg.StoreOptions()
	if err != nil {
		log.Fatal("invalid store options: ", err)
	}

	provider := scache.NewProvider()
	defer provider.Close()

	manager, err := provider.Manager(scache.DefaultURI, scache.DefaultScope, opts)
	if err != nil {
		log.Fatal("failed to create manager: ", err)
	}

	node, err := scache.NewServer(cfg, manager, nil)
	if err != nil {
		log.Fatal("failed to create server: ", err)
	}
	defer node.Stop()

	go func() {
		if err := node.Start(); err != nil {
			log.Fatalf("Server start failed: %v", err)
		}
	}()

	client, err := scache.NewClient(cfg.Addr)
	if err != nil {
		log.Fatal("failed to create client: ", err)
	}
	defer client.Close()

	cache := cfg.Caches[0]
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		ctx := context.Background()
		switch cmd, args := fields[0], fields[1:]; {
		case cmd == "use" && len(args) == 1:
			cache = args[0]
		case cmd == "put" && len(args) == 2:
			if err := client.Put(ctx, cache, args[0], []byte(args[1])); err != nil {
				log.Printf("put %s %s error: %v", args[0], args[1], err)
			}
		case cmd == "get" && len(args) == 1:
			val, ok, err := client.Get(ctx, cache, args[0])
			switch {
			case err != nil:
				log.Printf("get %s error: %v", args[0], err)
			case !ok:
				fmt.Printf("%s miss\n", args[0])
			default:
				fmt.Printf("%s %s\n", args[0], val)
			}
		case cmd == "del" && len(args) == 1:
			removed, err := client.Remove(ctx, cache, args[0])
			if err != nil {
				log.Printf("del %s error: %v", args[0], err)
			}
			fmt.Println(removed)
		case cmd == "clear":
			if err := client.Clear(ctx, cache); err != nil {
				log.Printf("clear %s error: %v", cache, err)
			}
		case cmd == "list":
			names, err := manager.CacheNames()
			if err != nil {
				log.Printf("list error: %v", err)
			}
			fmt.Println(names)
		case cmd == "quit":
			return
		default:
			fmt.Println("commands: use <cache>, put <key> <value>, get <key>, del <key>, clear, list, quit")
		}
	}
}
