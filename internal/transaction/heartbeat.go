package transaction

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/oriys/quasar/internal/forwarder"
	"github.com/oriys/quasar/internal/logging"
	"github.com/oriys/quasar/internal/metrics"
	"github.com/oriys/quasar/internal/remoting"
	"github.com/oriys/quasar/internal/route"
)

// HeartbeatClientID is the client id advertised on proxy-originated producer
// heartbeats.
const HeartbeatClientID = "rmq-proxy-producer-client"

// heartbeatInstance keys the forward client used for heartbeat traffic.
const heartbeatInstance = "tx-heartbeat"

// ClusterData is one broker cluster a producer group has published half
// messages to, with the broker addresses known at registration time.
type ClusterData struct {
	Cluster     string
	BrokerAddrs map[string]string // broker name -> master address
}

// HeartbeatConfig bounds the heartbeat loop.
type HeartbeatConfig struct {
	Period        time.Duration
	BatchNum      int
	Workers       int
	QueueCapacity int
	SendTimeout   time.Duration
}

// HeartbeatService keeps every broker hosting a prepared transactional
// message aware of the producer group that produced it, so the broker knows
// whom to ask for resolution after a timeout.
type HeartbeatService struct {
	cfg     HeartbeatConfig
	routes  *route.Cache
	clients *forwarder.Manager

	mu     sync.Mutex
	groups map[string]map[string]ClusterData // group -> cluster name -> data

	tasks  chan heartbeatTask
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

type heartbeatTask struct {
	addr string
	data *remoting.HeartbeatData
}

// NewHeartbeatService builds the service; call Start to begin the loop.
func NewHeartbeatService(cfg HeartbeatConfig, routes *route.Cache, clients *forwarder.Manager) *HeartbeatService {
	if cfg.Period <= 0 {
		cfg.Period = 20 * time.Second
	}
	if cfg.BatchNum <= 0 {
		cfg.BatchNum = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 500
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 3 * time.Second
	}
	return &HeartbeatService{
		cfg:     cfg,
		routes:  routes,
		clients: clients,
		groups:  make(map[string]map[string]ClusterData),
		tasks:   make(chan heartbeatTask, cfg.QueueCapacity),
		stopCh:  make(chan struct{}),
	}
}

// Start launches the ticker and the bounded sender pool.
func (s *HeartbeatService) Start() {
	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	s.wg.Add(1)
	go s.loop()
}

// Shutdown stops the loop and drains the workers.
func (s *HeartbeatService) Shutdown() {
	s.once.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

// AddProducerGroup registers the group against every cluster hosting the
// topic. Called after each successful transactional send; repeat
// registrations merge broker addresses.
func (s *HeartbeatService) AddProducerGroup(ctx context.Context, group, topic string) error {
	wrapper, err := s.routes.GetMessageQueue(ctx, topic)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	clusters, ok := s.groups[group]
	if !ok {
		clusters = make(map[string]ClusterData)
		s.groups[group] = clusters
	}
	for _, bd := range wrapper.Route.BrokerDatas {
		addr := bd.MasterAddr()
		if addr == "" {
			continue
		}
		cd, ok := clusters[bd.Cluster]
		if !ok {
			cd = ClusterData{Cluster: bd.Cluster, BrokerAddrs: make(map[string]string)}
		}
		cd.BrokerAddrs[bd.BrokerName] = addr
		clusters[bd.Cluster] = cd
	}
	return nil
}

// RemoveProducerGroup tears down the group's registration; whole entries are
// removed atomically so a concurrent scan never observes a partial payload.
func (s *HeartbeatService) RemoveProducerGroup(group string) {
	s.mu.Lock()
	delete(s.groups, group)
	s.mu.Unlock()
}

func (s *HeartbeatService) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.Period)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			close(s.tasks)
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick inverts the group map into cluster → groups, batches the groups per
// cluster, and submits one task per (payload, broker address). Submissions
// over the queue bound are dropped; the next tick retries.
func (s *HeartbeatService) tick() {
	type clusterAgg struct {
		groups []string
		addrs  map[string]string
	}

	s.mu.Lock()
	byCluster := make(map[string]*clusterAgg)
	for group, clusters := range s.groups {
		for name, cd := range clusters {
			agg, ok := byCluster[name]
			if !ok {
				agg = &clusterAgg{addrs: make(map[string]string)}
				byCluster[name] = agg
			}
			agg.groups = append(agg.groups, group)
			for broker, addr := range cd.BrokerAddrs {
				agg.addrs[broker] = addr
			}
		}
	}
	s.mu.Unlock()

	for cluster, agg := range byCluster {
		sort.Strings(agg.groups)
		for start := 0; start < len(agg.groups); start += s.cfg.BatchNum {
			end := start + s.cfg.BatchNum
			if end > len(agg.groups) {
				end = len(agg.groups)
			}
			data := &remoting.HeartbeatData{ClientID: HeartbeatClientID}
			for _, g := range agg.groups[start:end] {
				data.ProducerDataSet = append(data.ProducerDataSet, remoting.ProducerData{GroupName: g})
			}
			for _, addr := range agg.addrs {
				select {
				case s.tasks <- heartbeatTask{addr: addr, data: data}:
				default:
					metrics.RecordTxHeartbeat(true)
					logging.Op().Warn("transaction heartbeat queue full, dropping task",
						"cluster", cluster, "addr", addr)
				}
			}
		}
	}
}

func (s *HeartbeatService) worker() {
	defer s.wg.Done()
	for task := range s.tasks {
		s.sendHeartbeat(task)
	}
}

// sendHeartbeat delivers one payload to one broker. Failures are logged and
// never block other brokers.
func (s *HeartbeatService) sendHeartbeat(task heartbeatTask) {
	client, err := s.clients.Get(forwarder.RoleTransactionProducer, heartbeatInstance)
	if err != nil {
		logging.Op().Warn("transaction heartbeat client unavailable", "addr", task.addr, "error", err)
		return
	}

	body, err := json.Marshal(task.data)
	if err != nil {
		logging.Op().Error("transaction heartbeat encode failed", "error", err)
		return
	}
	cmd := remoting.NewCommand(remoting.CodeHeartbeat, nil)
	cmd.Body = body

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SendTimeout)
	defer cancel()
	res := <-client.InvokeAsync(ctx, task.addr, cmd, s.cfg.SendTimeout)
	switch {
	case res.Err != nil:
		logging.Op().Warn("transaction heartbeat failed", "addr", task.addr, "error", res.Err)
	case res.Cmd.Code != remoting.RespSuccess:
		logging.Op().Warn("transaction heartbeat rejected",
			"addr", task.addr, "code", res.Cmd.Code, "remark", res.Cmd.Remark)
	default:
		metrics.RecordTxHeartbeat(false)
	}
}
