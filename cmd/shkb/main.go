package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/cloudkucooland/HomeKitBridges/SensiboHKBridge"
	"github.com/cloudkucooland/HomeKitBridges/SensiboHKBridge/sensibo"

	"github.com/brutella/hap"
	"github.com/brutella/hap/log"

	"github.com/urfave/cli/v2"

	"github.com/vishvananda/netlink"
)

func main() {
	var dir, file string
	var debug bool

	app := cli.App{
		Name:  "sensibo homekit bridge",
		Usage: "server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Value:       "/var/db/HomeKitBridges/Sensibo",
				Usage:       "configuration directory",
				Destination: &dir,
			},
			&cli.StringFlag{
				Name:        "config",
				Value:       "sensibo.json",
				Usage:       "configuration file",
				Destination: &file,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Value:       false,
				Usage:       "enable debug",
				Destination: &debug,
			},
		},
		Action: func(c *cli.Context) error {
			if debug {
				log.Debug.Enable()
			}

			fulldir, err := filepath.Abs(dir)
			if err != nil {
				log.Info.Panic("unable to get config directory", dir)
			}
			conf, err := shkb.LoadConfig(filepath.Join(fulldir, file))
			if err != nil {
				log.Info.Panic(err.Error())
			}

			metrics := shkb.NewMetrics()
			hc := metrics.InstrumentClient(&http.Client{
				Transport: &http.Transport{MaxIdleConns: 5},
				Timeout:   conf.RequestTimeout(),
			})
			client := sensibo.New(conf.ID, conf.APIKey,
				sensibo.WithBaseURL(conf.BaseURL),
				sensibo.WithHTTPClient(hc),
				sensibo.WithLogger(log.Debug))

			ctx, cancel := context.WithCancel(context.Background())
			var wg sync.WaitGroup

			// accessory information only, state is read on demand
			pod, err := client.Fetch(ctx, sensibo.GroupAll)
			if err != nil {
				log.Info.Panic(err.Error())
			}

			device := shkb.NewDevice(client, metrics)
			ac := shkb.NewSensibo(conf.Name, pod, device, conf.PollInterval)

			wg.Add(1)
			go func() {
				defer wg.Done()
				ac.Poll(ctx)
			}()

			if conf.ListenAddr != "" {
				wg.Add(1)
				go func() {
					defer wg.Done()
					shkb.HTTPServer(ctx, conf.ListenAddr, shkb.Router(ac, metrics))
				}()
			}

			// listen for interface status changes, the mDNS responder has to be restarted
			linkstatuschan := make(chan netlink.LinkUpdate, 5)
			disconnectchan := make(chan struct{})
			if err := netlink.LinkSubscribe(linkstatuschan, disconnectchan); err != nil {
				log.Info.Panic(err.Error())
			}

			sigch := make(chan os.Signal, 3)
			signal.Notify(sigch, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGHUP, os.Interrupt)

			var hapwaitgroup sync.WaitGroup
		DONE:
			for {
				hapctx, hapcancel := context.WithCancel(ctx)
				s, err := hap.NewServer(hap.NewFsStore(fulldir), ac.A)
				if err != nil {
					log.Info.Panic(err)
				}
				if conf.Pin != "" {
					s.Pin = conf.Pin
				}

				hapwaitgroup.Add(1)
				go func() {
					defer hapwaitgroup.Done()
					s.ListenAndServe(hapctx)
				}()

				select {
				case sig := <-sigch:
					log.Info.Printf("shutdown requested by signal: %s", sig)
					hapcancel()
					hapwaitgroup.Wait()
					break DONE
				case <-linkstatuschan:
					log.Info.Printf("interface change, restarting homekit service")
					hapcancel()
					hapwaitgroup.Wait()
					// loop back around
				}
			}

			close(disconnectchan)
			cancel()
			wg.Wait()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Info.Panic(err)
	}
}
