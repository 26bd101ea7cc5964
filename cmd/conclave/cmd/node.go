package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	logging "github.com/inconshreveable/log15"
	"github.com/mattn/go-isatty"
	"github.com/oklog/run"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"

	cmdcommon "conclave.io/conclave/cmd/conclave/common"
	"conclave.io/conclave/lib/common"
	"conclave.io/conclave/lib/common/keypair"
	"conclave.io/conclave/lib/executor"
	"conclave.io/conclave/lib/ledger"
	"conclave.io/conclave/lib/membership"
	"conclave.io/conclave/lib/metrics"
	"conclave.io/conclave/lib/network"
	"conclave.io/conclave/lib/network/jsonrpc"
	"conclave.io/conclave/lib/node"
	"conclave.io/conclave/lib/node/runner"
	"conclave.io/conclave/lib/storage"
)

const defaultBind string = "http://0.0.0.0:12345"
const defaultJSONRPCBind string = "http://127.0.0.1:54321"
const defaultLogLevel logging.Lvl = logging.LvlInfo

var (
	flagKPSecretSeed        string = common.GetENVValue("CONCLAVE_SECRET_SEED", "")
	flagLogLevel            string = common.GetENVValue("CONCLAVE_LOG_LEVEL", defaultLogLevel.String())
	flagLogOutput           string = common.GetENVValue("CONCLAVE_LOG_OUTPUT", "")
	flagVerbose             bool   = common.GetENVValue("CONCLAVE_VERBOSE", "0") == "1"
	flagBindString          string = common.GetENVValue("CONCLAVE_BIND", defaultBind)
	flagPublishString       string = common.GetENVValue("CONCLAVE_PUBLISH", "")
	flagJSONRPCBindString   string = common.GetENVValue("CONCLAVE_JSONRPC_BIND", defaultJSONRPCBind)
	flagStorageConfigString string
	flagTLSCertFile         string = common.GetENVValue("CONCLAVE_TLS_CERT", "conclave.crt")
	flagTLSKeyFile          string = common.GetENVValue("CONCLAVE_TLS_KEY", "conclave.key")
	flagVoteThreshold       uint64 = ledger.VoteThreshold
	flagExecutorTimeout     string = common.GetENVValue("CONCLAVE_EXECUTOR_TIMEOUT", "30s")
	flagHTTPCacheAdapter    string = common.GetENVValue("CONCLAVE_HTTP_CACHE_ADAPTER", "")
	flagHTTPCachePoolSize   int    = common.HTTPCachePoolSize
	flagHTTPCacheRedisAddrs cmdcommon.ListFlags
	flagDebugPProf          bool
)

var (
	nodeCmd *cobra.Command

	kp              *keypair.Full
	bindEndpoint    *common.Endpoint
	publishEndpoint *common.Endpoint
	jsonrpcEndpoint *common.Endpoint
	storageConfig   *storage.Config
	executorTimeout time.Duration
	logLevel        logging.Lvl
	log             logging.Logger
)

func init() {
	var err error

	nodeCmd = &cobra.Command{
		Use:   "node",
		Short: "Run conclave node",
		Run: func(c *cobra.Command, args []string) {
			parseFlagsNode()

			runNode()
			return
		},
	}

	// storage
	var currentDirectory string
	if currentDirectory, err = os.Getwd(); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--storage", err)
	}
	if currentDirectory, err = filepath.Abs(currentDirectory); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--storage", err)
	}
	flagStorageConfigString = common.GetENVValue("CONCLAVE_STORAGE", fmt.Sprintf("file://%s/db", currentDirectory))

	nodeCmd.Flags().StringVar(&flagKPSecretSeed, "secret-seed", flagKPSecretSeed, "secret seed of this node")
	nodeCmd.Flags().StringVar(&flagLogLevel, "log-level", flagLogLevel, "log level, {crit, error, warn, info, debug}")
	nodeCmd.Flags().StringVar(&flagLogOutput, "log-output", flagLogOutput, "set log output file")
	nodeCmd.Flags().BoolVar(&flagVerbose, "verbose", flagVerbose, "verbose")
	nodeCmd.Flags().StringVar(&flagBindString, "bind", flagBindString, "endpoint uri to listen on ('http://0.0.0.0:12345')")
	nodeCmd.Flags().StringVar(&flagPublishString, "publish", flagPublishString, "endpoint uri to publish")
	nodeCmd.Flags().StringVar(&flagJSONRPCBindString, "jsonrpc-bind", flagJSONRPCBindString, "endpoint uri the admin jsonrpc to listen on")
	nodeCmd.Flags().StringVar(&flagStorageConfigString, "storage", flagStorageConfigString, "storage uri")
	nodeCmd.Flags().StringVar(&flagTLSCertFile, "tls-cert", flagTLSCertFile, "tls certificate file")
	nodeCmd.Flags().StringVar(&flagTLSKeyFile, "tls-key", flagTLSKeyFile, "tls key file")
	nodeCmd.Flags().Uint64Var(&flagVoteThreshold, "vote-threshold", flagVoteThreshold, "yes votes required to execute a proposal")
	nodeCmd.Flags().StringVar(&flagExecutorTimeout, "executor-timeout", flagExecutorTimeout, "timeout for proposal execution requests")
	nodeCmd.Flags().StringVar(&flagHTTPCacheAdapter, "http-cache-adapter", flagHTTPCacheAdapter, "http cache adapter: {mem, redis}")
	nodeCmd.Flags().IntVar(&flagHTTPCachePoolSize, "http-cache-pool-size", flagHTTPCachePoolSize, "http cache pool size")
	nodeCmd.Flags().Var(&flagHTTPCacheRedisAddrs, "http-cache-redis-addrs", "http cache redis address: '<name>=<host>:<port>'")
	nodeCmd.Flags().BoolVar(&flagDebugPProf, "debug-pprof", flagDebugPProf, "set debug pprof")

	nodeCmd.MarkFlagRequired("secret-seed")

	rootCmd.AddCommand(nodeCmd)
}

func parseFlagsNode() {
	var err error

	var parsedKP keypair.KP
	parsedKP, err = keypair.Parse(flagKPSecretSeed)
	if err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--secret-seed", err)
	} else {
		var ok bool
		if kp, ok = parsedKP.(*keypair.Full); !ok {
			cmdcommon.PrintFlagsError(nodeCmd, "--secret-seed", errors.New("not a secret seed"))
		}
	}

	if bindEndpoint, err = common.ParseEndpoint(flagBindString); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--bind", err)
	} else {
		flagBindString = bindEndpoint.String()
	}

	if strings.ToLower(bindEndpoint.Scheme) == "https" {
		if _, err = os.Stat(flagTLSCertFile); os.IsNotExist(err) {
			cmdcommon.PrintFlagsError(nodeCmd, "--tls-cert", err)
		}
		if _, err = os.Stat(flagTLSKeyFile); os.IsNotExist(err) {
			cmdcommon.PrintFlagsError(nodeCmd, "--tls-key", err)
		}

		queries := bindEndpoint.Query()
		queries.Add("TLSCertFile", flagTLSCertFile)
		queries.Add("TLSKeyFile", flagTLSKeyFile)
		queries.Add("IdleTimeout", "3s")
		bindEndpoint.RawQuery = queries.Encode()
	}

	if len(flagPublishString) > 0 {
		if publishEndpoint, err = common.ParseEndpoint(flagPublishString); err != nil {
			cmdcommon.PrintFlagsError(nodeCmd, "--publish", err)
		}
	}

	if jsonrpcEndpoint, err = common.ParseEndpoint(flagJSONRPCBindString); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--jsonrpc-bind", err)
	}

	if storageConfig, err = storage.NewConfigFromString(flagStorageConfigString); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--storage", err)
	}

	if executorTimeout, err = time.ParseDuration(flagExecutorTimeout); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--executor-timeout", err)
	}

	if logLevel, err = logging.LvlFromString(flagLogLevel); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--log-level", err)
	}

	var logHandler logging.Handler

	var formatter logging.Format
	if isatty.IsTerminal(os.Stdout.Fd()) {
		formatter = logging.TerminalFormat()
	} else {
		formatter = common.JsonFormatEx(false, true)
	}
	logHandler = logging.StreamHandler(os.Stdout, formatter)

	if len(flagLogOutput) < 1 {
		flagLogOutput = "<stdout>"
	} else {
		if logHandler, err = logging.FileHandler(flagLogOutput, common.JsonFormatEx(false, true)); err != nil {
			cmdcommon.PrintFlagsError(nodeCmd, "--log-output", err)
		}
	}

	log = logging.New("module", "main")
	log.SetHandler(logging.LvlFilterHandler(logLevel, logHandler))
	ledger.SetLogging(logLevel, logHandler)
	executor.SetLogging(logLevel, logHandler)
	network.SetLogging(logLevel, logHandler)
	runner.SetLogging(logLevel, logHandler)

	log.Info("Starting conclave")

	// print flags
	parsedFlags := []interface{}{}
	parsedFlags = append(parsedFlags, "\n\tbind", flagBindString)
	parsedFlags = append(parsedFlags, "\n\tpublish", flagPublishString)
	parsedFlags = append(parsedFlags, "\n\tjsonrpc-bind", flagJSONRPCBindString)
	parsedFlags = append(parsedFlags, "\n\tstorage", flagStorageConfigString)
	parsedFlags = append(parsedFlags, "\n\tvote-threshold", flagVoteThreshold)
	parsedFlags = append(parsedFlags, "\n\texecutor-timeout", flagExecutorTimeout)
	parsedFlags = append(parsedFlags, "\n\tlog-level", flagLogLevel)
	parsedFlags = append(parsedFlags, "\n\tlog-output", flagLogOutput)

	log.Debug("parsed flags:", parsedFlags...)

	if flagVerbose {
		http2.VerboseLogs = true
		runner.DebugPProf = true
	}
	if flagDebugPProf {
		runner.DebugPProf = true
	}
}

func newNodeConfig() (common.Config, error) {
	conf := common.NewConfig()
	conf.HTTPCacheAdapter = flagHTTPCacheAdapter
	conf.HTTPCachePoolSize = flagHTTPCachePoolSize

	if len(flagHTTPCacheRedisAddrs) > 0 {
		conf.HTTPCacheRedisAddrs = map[string]string{}
		for _, addr := range flagHTTPCacheRedisAddrs {
			parsed := strings.SplitN(addr, "=", 2)
			if len(parsed) != 2 {
				return conf, fmt.Errorf("invalid redis address '%s'", addr)
			}
			conf.HTTPCacheRedisAddrs[parsed[0]] = parsed[1]
		}
	}

	return conf, nil
}

func runNode() {
	metrics.InitPrometheusMetrics()
	metrics.SetVersion()

	conf, err := newNodeConfig()
	if err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--http-cache-redis-addrs", err)
	}

	st, err := storage.NewStorage(storageConfig)
	if err != nil {
		log.Crit("failed to initialize storage", "error", err)

		os.Exit(1)
	}

	registry, err := membership.GetRegistry(st)
	if err != nil {
		log.Crit("failed to load the member registry; run 'genesis' first", "error", err)

		os.Exit(1)
	}

	ex, err := executor.NewHTTPExecutor(executorTimeout)
	if err != nil {
		log.Crit("failed to initialize executor", "error", err)

		os.Exit(1)
	}

	lg, err := ledger.NewLedger(st, registry, ex, flagVoteThreshold)
	if err != nil {
		log.Crit("failed to initialize ledger", "error", err)

		os.Exit(1)
	}

	localNode, err := node.NewLocalNode(kp, bindEndpoint, "")
	if err != nil {
		log.Error("failed to launch main node", "error", err)
		return
	}
	if publishEndpoint != nil {
		localNode.SetPublishEndpoint(publishEndpoint)
	}

	networkConfig, err := network.NewHTTP2NetworkConfigFromEndpoint(localNode.Alias(), bindEndpoint)
	if err != nil {
		log.Crit("transport error", "error", err)

		os.Exit(1)
	}
	nt := network.NewHTTP2Network(networkConfig)

	// Execution group.
	var g run.Group
	{
		nr, err := runner.NewNodeRunner(localNode, nt, lg, st, conf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		g.Add(func() error {
			if err := nr.Start(); err != nil {
				log.Crit("failed to start node", "error", err)
				return err
			}
			return nil
		}, func(error) {
			nr.Stop()
		})
	}
	{
		js := jsonrpc.NewServer(jsonrpcEndpoint, st, lg)
		g.Add(func() error {
			if err := js.Start(); err != nil {
				log.Crit("failed to start jsonrpc server", "error", err)
				return err
			}
			return nil
		}, func(error) {
			js.Stop()
		})
	}
	{
		cancel := make(chan struct{})
		g.Add(func() error {
			return cmdcommon.Interrupt(cancel)
		}, func(error) {
			close(cancel)
		})
	}

	if err := g.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
