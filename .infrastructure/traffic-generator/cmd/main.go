package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
)

// Метрики
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "traffic_requests_total",
		Help: "Запросы к dispatch по сценарию и коду ответа",
	}, []string{"scenario", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "traffic_request_duration_seconds",
		Help:    "Длительность запроса в секундах",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.3, 1},
	}, []string{"scenario"})
)

type config struct {
	target       string
	metricsAddr  string
	couriers     int
	pingInterval time.Duration
	pickupEvery  time.Duration
	centerLat    float64
	centerLon    float64
	hub          string
}

type generator struct {
	cfg    config
	client *http.Client
}

type point struct {
	lat, lon float64
}

func main() {
	var cfg config
	pflag.StringVar(&cfg.target, "target", "http://localhost:8080", "адрес dispatch")
	pflag.StringVar(&cfg.metricsAddr, "metrics-addr", ":2112", "адрес для /metrics")
	pflag.IntVar(&cfg.couriers, "couriers", 50, "число симулируемых курьеров")
	pflag.DurationVar(&cfg.pingInterval, "ping-interval", 2*time.Second, "период пингов одного курьера")
	pflag.DurationVar(&cfg.pickupEvery, "pickup-every", time.Second, "период создания заказов")
	pflag.Float64Var(&cfg.centerLat, "lat", 55.7558, "широта центра зоны")
	pflag.Float64Var(&cfg.centerLon, "lon", 37.6173, "долгота центра зоны")
	pflag.StringVar(&cfg.hub, "hub", "load", "хаб симулируемых курьеров")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.metricsAddr, mux); err != nil {
			log.Printf("metrics server: %v", err)
		}
	}()

	g := &generator{
		cfg:    cfg,
		client: &http.Client{Timeout: 5 * time.Second},
	}

	var wg sync.WaitGroup
	for i := range cfg.couriers {
		id := "load-" + strconv.Itoa(i)
		if err := g.register(ctx, id); err != nil {
			log.Printf("register %s: %v", id, err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.drive(ctx, id)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		g.orders(ctx)
	}()

	wg.Wait()
}

// register создаёт курьера и выводит его на линию. Повторный запуск допускает 409.
func (g *generator) register(ctx context.Context, id string) error {
	code, err := g.call(ctx, "register", http.MethodPost, "/courier", map[string]any{
		"id":             id,
		"name":           "Load " + id,
		"phone":          fmt.Sprintf("+7999%07d", rand.IntN(10_000_000)),
		"transport_type": "bicycle",
		"hub":            g.cfg.hub,
	})
	if err != nil {
		return err
	}
	if code != http.StatusCreated && code != http.StatusConflict {
		return fmt.Errorf("unexpected status %d", code)
	}

	_, err = g.call(ctx, "availability", http.MethodPut, "/courier/"+id+"/availability", map[string]any{
		"status": "online",
	})
	return err
}

// drive шлёт пинги курьера, смещая его случайным блужданием вокруг центра.
func (g *generator) drive(ctx context.Context, id string) {
	pos := g.randomPoint(0.02)
	ticker := time.NewTicker(g.cfg.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pos.lat += (rand.Float64() - 0.5) * 0.0005
		pos.lon += (rand.Float64() - 0.5) * 0.0005
		_, _ = g.call(ctx, "location", http.MethodPut, "/courier/"+id+"/location", map[string]any{
			"lat":       pos.lat,
			"lon":       pos.lon,
			"timestamp": time.Now().UTC(),
		})
	}
}

func (g *generator) orders(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.pickupEvery)
	defer ticker.Stop()

	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pickup, dropoff := g.randomPoint(0.01), g.randomPoint(0.03)
		_, _ = g.call(ctx, "pickup", http.MethodPost, "/pickup", map[string]any{
			"customer_id": "load-customer-" + strconv.Itoa(n%100),
			"pickup":      map[string]any{"label": "store", "lat": pickup.lat, "lon": pickup.lon},
			"dropoff":     map[string]any{"label": "home", "lat": dropoff.lat, "lon": dropoff.lon},
			"items": []map[string]any{
				{"product_ref": "sku-" + strconv.Itoa(rand.IntN(50)), "quantity": 1 + rand.IntN(3), "unit_price": "199.90"},
			},
			"delivery_fee": "99.00",
			"currency":     "RUB",
			"atomic":       true,
		})
	}
}

func (g *generator) randomPoint(spread float64) point {
	return point{
		lat: g.cfg.centerLat + (rand.Float64()-0.5)*spread,
		lon: g.cfg.centerLon + (rand.Float64()-0.5)*spread,
	}
}

func (g *generator) call(ctx context.Context, scenario, method, path string, body any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, method, g.cfg.target+path, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	requestDuration.WithLabelValues(scenario).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(scenario, "error").Inc()
		return 0, err
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(scenario, strconv.Itoa(resp.StatusCode)).Inc()
	return resp.StatusCode, nil
}
