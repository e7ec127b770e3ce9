package route

import "testing"

func wrapperFor(qd QueueData) *TopicRouteWrapper {
	return NewTopicRouteWrapper("t", &TopicRouteData{
		QueueDatas: []QueueData{qd},
		BrokerDatas: []BrokerData{
			{Cluster: "c1", BrokerName: qd.BrokerName, BrokerAddrs: map[int64]string{0: "10.0.0.1:10911"}},
		},
	})
}

func TestQueueGeneration(t *testing.T) {
	tests := []struct {
		name      string
		read      int32
		write     int32
		perm      int32
		wantTotal int
		wantPerms []int32 // expected perm per contiguous id
	}{
		{
			name: "read write surplus write", read: 4, write: 8, perm: PermRead | PermWrite,
			wantTotal: 8,
			wantPerms: []int32{PermWrite, PermWrite, PermWrite, PermWrite,
				PermRead | PermWrite, PermRead | PermWrite, PermRead | PermWrite, PermRead | PermWrite},
		},
		{
			name: "read write surplus read", read: 6, write: 2, perm: PermRead | PermWrite,
			wantTotal: 6,
			wantPerms: []int32{PermRead, PermRead, PermRead, PermRead,
				PermRead | PermWrite, PermRead | PermWrite},
		},
		{
			name: "balanced", read: 3, write: 3, perm: PermRead | PermWrite,
			wantTotal: 3,
			wantPerms: []int32{PermRead | PermWrite, PermRead | PermWrite, PermRead | PermWrite},
		},
		{
			name: "read only", read: 4, write: 8, perm: PermRead,
			wantTotal: 4,
			wantPerms: []int32{PermRead, PermRead, PermRead, PermRead},
		},
		{
			name: "write only", read: 4, write: 2, perm: PermWrite,
			wantTotal: 2,
			wantPerms: []int32{PermWrite, PermWrite},
		},
		{
			name: "no perm", read: 4, write: 4, perm: 0,
			wantTotal: 0,
			wantPerms: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := wrapperFor(QueueData{
				BrokerName:     "b1",
				ReadQueueNums:  tt.read,
				WriteQueueNums: tt.write,
				Perm:           tt.perm,
			})
			queues := w.Queues()
			if len(queues) != tt.wantTotal {
				t.Fatalf("got %d queues, want %d", len(queues), tt.wantTotal)
			}
			for i, q := range queues {
				if q.QueueID != int32(i) {
					t.Errorf("queue %d has id %d, want contiguous ids from 0", i, q.QueueID)
				}
				if q.Perm != tt.wantPerms[i] {
					t.Errorf("queue %d has perm %d, want %d", i, q.Perm, tt.wantPerms[i])
				}
				if q.BrokerAddr != "10.0.0.1:10911" {
					t.Errorf("queue %d has addr %q", i, q.BrokerAddr)
				}
			}
		})
	}
}

func TestQueueGenerationSkipsBrokerWithoutMaster(t *testing.T) {
	w := NewTopicRouteWrapper("t", &TopicRouteData{
		QueueDatas: []QueueData{
			{BrokerName: "b1", ReadQueueNums: 2, WriteQueueNums: 2, Perm: PermRead | PermWrite},
			{BrokerName: "b2", ReadQueueNums: 2, WriteQueueNums: 2, Perm: PermRead | PermWrite},
		},
		BrokerDatas: []BrokerData{
			{Cluster: "c1", BrokerName: "b1", BrokerAddrs: map[int64]string{0: "10.0.0.1:10911"}},
			{Cluster: "c1", BrokerName: "b2", BrokerAddrs: map[int64]string{1: "10.0.0.2:10911"}}, // slave only
		},
	})
	for _, q := range w.Queues() {
		if q.BrokerName == "b2" {
			t.Fatalf("queue generated for broker with no master address")
		}
	}
	if len(w.Queues()) != 2 {
		t.Fatalf("got %d queues, want 2", len(w.Queues()))
	}
}

func TestBrokerAddr(t *testing.T) {
	w := wrapperFor(QueueData{BrokerName: "b1", ReadQueueNums: 1, WriteQueueNums: 1, Perm: PermRead | PermWrite})

	addr, err := w.BrokerAddr("b1")
	if err != nil {
		t.Fatalf("BrokerAddr: %v", err)
	}
	if addr != "10.0.0.1:10911" {
		t.Fatalf("got %q", addr)
	}

	if _, err := w.BrokerAddr("nope"); err == nil {
		t.Fatal("expected error for unknown broker")
	}
}

func TestClusters(t *testing.T) {
	w := NewTopicRouteWrapper("t", &TopicRouteData{
		BrokerDatas: []BrokerData{
			{Cluster: "c2", BrokerName: "b2", BrokerAddrs: map[int64]string{0: "10.0.0.2:10911"}},
			{Cluster: "c1", BrokerName: "b1", BrokerAddrs: map[int64]string{0: "10.0.0.1:10911"}},
			{Cluster: "c1", BrokerName: "b3", BrokerAddrs: map[int64]string{0: "10.0.0.3:10911"}},
		},
	})
	clusters := w.Clusters()
	if len(clusters) != 2 || clusters[0] != "c1" || clusters[1] != "c2" {
		t.Fatalf("got %v", clusters)
	}
}
