package telemetry

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"testing"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/logger"
	"codeberg.org/mutker/ryzenctl/internal/table"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dump = "h1\nh2\nh3\n" +
	"| 0x0144 | 0x1c2 | 450 |\n" +
	"| 0x0018 | 0x20 | 25.5 |\n" +
	"| 0x02a4 | 0x00 | bogus |\n"

type fakeSource struct {
	snap *table.Snapshot
	err  error
}

func (f *fakeSource) Snapshot() *table.Snapshot { return f.snap }
func (f *fakeSource) LastError() error          { return f.err }

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()

	pb := &dto.Metric{}
	require.NoError(t, g.Write(pb))

	return pb.GetGauge().GetValue()
}

func family(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}

	return nil
}

func TestExporterUsesCustomRegistry(t *testing.T) {
	e := NewExporter(logger.Nop())

	defaults, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, f := range defaults {
		assert.NotContains(t, f.GetName(), "ryzenctl_")
	}
	assert.NotNil(t, family(t, e.Registry, "ryzenctl_snapshots_total"))
}

func TestExporterRecord(t *testing.T) {
	e := NewExporter(logger.Nop())
	at := time.Unix(1714564800, 0)

	require.NoError(t, e.Record(context.Background(), table.Parse(dump).Stamp("a", at)))

	assert.Equal(t, 45.0, gaugeValue(t, e.MetricValue.WithLabelValues("stapm-value", "0x0144", "W")))
	assert.Equal(t, 25.5, gaugeValue(t, e.MetricValue.WithLabelValues("ppt-apu", "0x0018", "W")))
	assert.Equal(t, 3.0, gaugeValue(t, e.Records))
	assert.Equal(t, 1.0, gaugeValue(t, e.InvalidRecords))
	assert.Equal(t, 1714564800.0, gaugeValue(t, e.LastPoll))

	f := family(t, e.Registry, "ryzenctl_metric_value")
	require.NotNil(t, f)
	assert.Len(t, f.GetMetric(), 2, "rows without a number are not exported")
}

func TestExporterRecordReplacesPreviousSeries(t *testing.T) {
	e := NewExporter(logger.Nop())

	require.NoError(t, e.Record(context.Background(), table.Parse(dump).Stamp("a", time.Now())))
	require.NoError(t, e.Record(context.Background(), table.Parse("h\nh\nh\n| 0x0150 | 0x0 | 60 |\n").Stamp("b", time.Now())))

	f := family(t, e.Registry, "ryzenctl_metric_value")
	require.NotNil(t, f)
	require.Len(t, f.GetMetric(), 1)
	assert.Equal(t, 60.0, f.GetMetric()[0].GetGauge().GetValue())

	total := family(t, e.Registry, "ryzenctl_snapshots_total")
	require.NotNil(t, total)
	assert.Equal(t, 2.0, total.GetMetric()[0].GetCounter().GetValue())
}

func TestExporterRecordNil(t *testing.T) {
	e := NewExporter(logger.Nop())
	assert.Error(t, e.Record(context.Background(), nil))
}

func TestRegisterHealth(t *testing.T) {
	e := NewExporter(logger.Nop())
	src := &fakeSource{}
	require.NoError(t, e.RegisterHealth(src))

	up := family(t, e.Registry, "ryzenctl_up")
	require.NotNil(t, up)
	assert.Equal(t, 1.0, up.GetMetric()[0].GetGauge().GetValue())

	src.err = stderrors.New("access denied")
	up = family(t, e.Registry, "ryzenctl_up")
	assert.Equal(t, 0.0, up.GetMetric()[0].GetGauge().GetValue())

	assert.Error(t, e.RegisterHealth(src), "registering twice must fail")
}

func startServer(t *testing.T, src *fakeSource) (*Server, *Exporter) {
	t.Helper()

	e := NewExporter(logger.Nop())
	s := NewServer("127.0.0.1:0", e, src, src, logger.Nop())
	require.NoError(t, s.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})

	return s, e
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestServerMetrics(t *testing.T) {
	src := &fakeSource{snap: table.Empty()}
	s, e := startServer(t, src)
	require.NoError(t, e.Record(context.Background(), table.Parse(dump).Stamp("a", time.Now())))

	status, body := get(t, "http://"+s.Addr()+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `ryzenctl_metric_value{name="stapm-value",offset="0x0144",unit="W"} 45`)
}

func TestServerHealthz(t *testing.T) {
	src := &fakeSource{snap: table.Empty()}
	s, _ := startServer(t, src)

	status, body := get(t, "http://"+s.Addr()+"/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	src.err = stderrors.New("ryzenadj exited with status 1")
	status, body = get(t, "http://"+s.Addr()+"/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, "exited with status 1")
}

func TestServerSnapshot(t *testing.T) {
	src := &fakeSource{snap: table.Parse(dump).Stamp("poll-1", time.Now())}
	s, _ := startServer(t, src)

	status, body := get(t, "http://"+s.Addr()+"/snapshot")
	require.Equal(t, http.StatusOK, status)

	var out struct {
		ID      string `json:"id"`
		Records []struct {
			Name  string   `json:"name"`
			Value *float64 `json:"value"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, "poll-1", out.ID)
	require.Len(t, out.Records, 3)
	assert.Equal(t, "stapm-value", out.Records[0].Name)
	assert.Nil(t, out.Records[2].Value)
}
