/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// go-spm API
//
// RESTful API over the parameter channel of an SPM controller.
//
// Schemes: http
// Host: localhost:8000
// Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
package control

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"jinr.ru/greenlab/go-spm/pkg/config"
	"jinr.ru/greenlab/go-spm/pkg/device/asc500"
	"jinr.ru/greenlab/go-spm/pkg/log"
	"jinr.ru/greenlab/go-spm/pkg/param"
	"jinr.ru/greenlab/go-spm/pkg/srv"
	"jinr.ru/greenlab/go-spm/pkg/srv/control/ifc"
	"jinr.ru/greenlab/go-spm/pkg/state"
)

// ParamValue is the value of one parameter
type ParamValue struct {
	Addr  string `json:"addr"`
	Index int32  `json:"index"`
	Value int32  `json:"value"`
}

// ConfirmRequest sets a parameter and polls Readback (the parameter itself
// if empty) until it shows Value
type ConfirmRequest struct {
	Value    int32  `json:"value"`
	Readback string `json:"readback,omitempty"`
}

type ConfirmResult struct {
	Value    int32 `json:"value"`
	Attempts int   `json:"attempts"`
	Matched  bool  `json:"matched"`
}

type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Rotation struct {
	Degrees float64 `json:"degrees"`
}

type SampleTime struct {
	SampleTime time.Duration `json:"sampleTime"`
}

type ScanStatus struct {
	State string `json:"state"`
}

// Output is the scanner output state. On requests Matched false means the
// status did not follow yet.
type Output struct {
	On      bool `json:"on"`
	Matched bool `json:"matched"`
}

type Position struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
	Z int32 `json:"z"`
}

type CaptureRequest struct {
	Capacity  int `json:"capacity"`
	TimeoutMs int `json:"timeoutMs,omitempty"`
}

type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	ctrl ifc.ControlServer
}

var _ ifc.ApiServer = &ApiServer{}

func NewApiServer(ctx context.Context, cfg *config.Config, ctrl ifc.ControlServer) (ifc.ApiServer, error) {
	log.Info("Initializing API server with address: %s port: %d", cfg.ApiAddress, cfg.ApiPort)

	s := &ApiServer{
		Context: ctx,
		Config:  cfg,
		ctrl:    ctrl,
	}
	s.configureRouter()
	return s, nil
}

// Run serves until the context ends
func (s *ApiServer) Run() error {
	log.Info("Starting API server: address: %s port: %d", s.Config.ApiAddress, s.Config.ApiPort)
	recovery := handlers.RecoveryHandler(handlers.PrintRecoveryStack(log.Enabled(log.DebugLevel)))
	httpServer := &http.Server{
		Handler: recovery(handlers.LoggingHandler(log.Writer(), s.Router)),
		Addr:    fmt.Sprintf("%s:%d", s.Config.ApiAddress, s.Config.ApiPort),
	}

	go func() {
		<-s.Context.Done()
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		httpServer.Shutdown(ctx)
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	s.Router.Handle("/metrics", s.ctrl.Metrics()).Methods("GET")
	subRouter := s.Router.PathPrefix(ApiPrefix).Subrouter()
	subRouter.HandleFunc("/param", s.handleParamReadAll()).Methods("GET")
	subRouter.HandleFunc("/param/{addr}/{index:[0-9]+}", s.handleParamRead()).Methods("GET")
	subRouter.HandleFunc("/param/{addr}/{index:[0-9]+}", s.handleParamWrite()).Methods("POST")
	subRouter.HandleFunc("/param/{addr}/{index:[0-9]+}/confirm", s.handleParamConfirm()).Methods("POST")
	subRouter.HandleFunc("/channel/{n:[0-9]+}", s.handleChannelRead()).Methods("GET")
	subRouter.HandleFunc("/channel/{n:[0-9]+}", s.handleChannelWrite()).Methods("POST")
	subRouter.HandleFunc("/scan", s.handleScanState()).Methods("GET")
	subRouter.HandleFunc("/scan/{action:start|stop|pause}", s.handleScanAction()).Methods("GET")
	subRouter.HandleFunc("/scan/offset", s.handleScanOffset()).Methods("GET", "POST")
	subRouter.HandleFunc("/scan/pixels", s.handleScanPixels()).Methods("GET", "POST")
	subRouter.HandleFunc("/scan/rotation", s.handleScanRotation()).Methods("GET", "POST")
	subRouter.HandleFunc("/scan/sampletime", s.handleSampleTime()).Methods("GET", "POST")
	subRouter.HandleFunc("/output", s.handleOutputRead()).Methods("GET")
	subRouter.HandleFunc("/output", s.handleOutputWrite()).Methods("POST")
	subRouter.HandleFunc("/position", s.handlePosition()).Methods("GET")
	subRouter.HandleFunc("/frame/{channel:[0-9]+}", s.handleCapture()).Methods("POST")
}

// status maps an error to the HTTP status of the response
func status(err error) int {
	var badRequest srv.ErrBadRequest
	var unknownParam asc500.ErrUnknownParam
	var notFound state.ErrNotFound
	switch {
	case errors.As(err, &badRequest), errors.As(err, &unknownParam), errors.Is(err, param.OutOfRange):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, param.Timeout):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func fail(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), status(err))
}

func paramVars(r *http.Request) (param.Address, int32, error) {
	vars := mux.Vars(r)
	addr, err := asc500.ParseAddress(vars["addr"])
	if err != nil {
		return 0, 0, err
	}
	index, err := strconv.ParseInt(vars["index"], 10, 32)
	if err != nil {
		return 0, 0, srv.ErrBadRequest{What: err.Error()}
	}
	return addr, int32(index), nil
}

func intVar(r *http.Request, name string) (int32, error) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 32)
	if err != nil {
		return 0, srv.ErrBadRequest{What: err.Error()}
	}
	return int32(v), nil
}

func (s *ApiServer) handleParamReadAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling param read all request")
		records, err := s.ctrl.ParamReadAll()
		if err != nil {
			fail(w, err)
			return
		}
		values := []*ParamValue{}
		for _, record := range records {
			values = append(values, &ParamValue{
				Addr:  record.Addr.String(),
				Index: record.Index,
				Value: record.Value,
			})
		}
		srv.WriteJSON(w, values)
	}
}

func (s *ApiServer) handleParamRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr, index, err := paramVars(r)
		if err != nil {
			fail(w, err)
			return
		}
		log.Debug("Handling param read request: addr: %s index: %d", addr, index)

		value, err := s.ctrl.ParamRead(addr, index)
		if err != nil {
			fail(w, err)
			return
		}
		srv.WriteJSON(w, &ParamValue{Addr: addr.String(), Index: index, Value: value})
	}
}

func (s *ApiServer) handleParamWrite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr, index, err := paramVars(r)
		if err != nil {
			fail(w, err)
			return
		}
		req := &ParamValue{}
		if err := srv.ReadJSON(r, req); err != nil {
			fail(w, err)
			return
		}
		log.Debug("Handling param write request: addr: %s index: %d value: %d", addr, index, req.Value)

		echo, err := s.ctrl.ParamWrite(addr, index, req.Value)
		if err != nil {
			fail(w, err)
			return
		}
		srv.WriteJSON(w, &ParamValue{Addr: addr.String(), Index: index, Value: echo})
	}
}

func (s *ApiServer) handleParamConfirm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr, index, err := paramVars(r)
		if err != nil {
			fail(w, err)
			return
		}
		req := &ConfirmRequest{}
		if err := srv.ReadJSON(r, req); err != nil {
			fail(w, err)
			return
		}
		var readback param.Address
		if req.Readback != "" {
			if readback, err = asc500.ParseAddress(req.Readback); err != nil {
				fail(w, err)
				return
			}
		}
		log.Debug("Handling param confirm request: addr: %s index: %d value: %d", addr, index, req.Value)

		res, err := s.ctrl.ParamConfirm(r.Context(), addr, readback, index, req.Value)
		if err != nil {
			fail(w, err)
			return
		}
		srv.WriteJSON(w, &ConfirmResult{Value: res.Value, Attempts: res.Attempts, Matched: res.Matched})
	}
}

func (s *ApiServer) handleChannelRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := intVar(r, "n")
		if err != nil {
			fail(w, err)
			return
		}
		cfg, err := s.ctrl.Device().Channel(n)
		if err != nil {
			fail(w, err)
			return
		}
		srv.WriteJSON(w, cfg)
	}
}

func (s *ApiServer) handleChannelWrite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := intVar(r, "n")
		if err != nil {
			fail(w, err)
			return
		}
		cfg := &asc500.ChannelConfig{}
		if err := srv.ReadJSON(r, cfg); err != nil {
			fail(w, err)
			return
		}
		log.Debug("Handling channel request: channel: %d trigger: %d source: %d", n, cfg.Trigger, cfg.Source)

		device := s.ctrl.Device()
		if err := device.ConfigureChannel(n, *cfg); err != nil {
			fail(w, err)
			return
		}
		applied, err := device.Channel(n)
		if err != nil {
			fail(w, err)
			return
		}
		srv.WriteJSON(w, applied)
	}
}

func (s *ApiServer) handleScanState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scan, err := s.ctrl.Device().ScannerState()
		if err != nil {
			fail(w, err)
			return
		}
		srv.WriteJSON(w, &ScanStatus{State: scan.String()})
	}
}

func (s *ApiServer) handleScanAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := mux.Vars(r)["action"]
		log.Debug("Handling scan action request: action: %s", action)
		var requested asc500.ScanState
		switch action {
		case "start":
			requested = asc500.ScanOn
		case "stop":
			requested = asc500.ScanOff
		case "pause":
			requested = asc500.ScanPause
		default:
			err := srv.ErrUnknownOperation{
				What: "Wrong scan action. Must be one of start/stop/pause",
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		scan, err := s.ctrl.Device().SetScannerState(requested)
		if err != nil {
			fail(w, err)
			return
		}
		srv.WriteJSON(w, &ScanStatus{State: scan.String()})
	}
}

func (s *ApiServer) handleScanOffset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		device := s.ctrl.Device()
		var x, y float64
		var err error
		if r.Method == http.MethodPost {
			req := &Offset{}
			if err := srv.ReadJSON(r, req); err != nil {
				fail(w, err)
				return
			}
			x, y, err = device.SetScanOffset(req.X, req.Y)
		} else {
			x, y, err = device.ScanOffset()
		}
		if err != nil {
			fail(w, err)
			return
		}
		srv.WriteJSON(w, &Offset{X: x, Y: y})
	}
}

func (s *ApiServer) handleScanPixels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		device := s.ctrl.Device()
		var pixels asc500.Pixels
		var err error
		if r.Method == http.MethodPost {
			req := asc500.Pixels{}
			if err := srv.ReadJSON(r, &req); err != nil {
				fail(w, err)
				return
			}
			pixels, err = device.SetScanPixels(req)
		} else {
			pixels, err = device.ScanPixels()
		}
		if err != nil {
			fail(w, err)
			return
		}
		srv.WriteJSON(w, &pixels)
	}
}

func (s *ApiServer) handleScanRotation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		device := s.ctrl.Device()
		var deg float64
		var err error
		if r.Method == http.MethodPost {
			req := &Rotation{}
			if err := srv.ReadJSON(r, req); err != nil {
				fail(w, err)
				return
			}
			deg, err = device.SetScanRotation(req.Degrees)
		} else {
			deg, err = device.ScanRotation()
		}
		if err != nil {
			fail(w, err)
			return
		}
		srv.WriteJSON(w, &Rotation{Degrees: deg})
	}
}

func (s *ApiServer) handleSampleTime() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		device := s.ctrl.Device()
		var d time.Duration
		var err error
		if r.Method == http.MethodPost {
			req := &SampleTime{}
			if err := srv.ReadJSON(r, req); err != nil {
				fail(w, err)
				return
			}
			d, err = device.SetSampleTime(req.SampleTime)
		} else {
			d, err = device.SampleTime()
		}
		if err != nil {
			fail(w, err)
			return
		}
		srv.WriteJSON(w, &SampleTime{SampleTime: d})
	}
}

func (s *ApiServer) handleOutputRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		on, err := s.ctrl.Device().OutputActivation()
		if err != nil {
			fail(w, err)
			return
		}
		srv.WriteJSON(w, &Output{On: on, Matched: true})
	}
}

func (s *ApiServer) handleOutputWrite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &Output{}
		if err := srv.ReadJSON(r, req); err != nil {
			fail(w, err)
			return
		}
		log.Debug("Handling output request: on: %t", req.On)

		on, err := s.ctrl.Device().SetOutputActivation(r.Context(), req.On)
		if err != nil {
			fail(w, err)
			return
		}
		srv.WriteJSON(w, &Output{On: on, Matched: on == req.On})
	}
}

func (s *ApiServer) handlePosition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		device := s.ctrl.Device()
		x, y, err := device.XYPos()
		if err != nil {
			fail(w, err)
			return
		}
		z, err := device.ZPos()
		if err != nil {
			fail(w, err)
			return
		}
		srv.WriteJSON(w, &Position{X: x, Y: y, Z: z})
	}
}

func (s *ApiServer) handleCapture() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channel, err := intVar(r, "channel")
		if err != nil {
			fail(w, err)
			return
		}
		req := &CaptureRequest{}
		if err := srv.ReadJSON(r, req); err != nil {
			fail(w, err)
			return
		}
		if req.Capacity <= 0 || req.Capacity > MaxFrameCapacity {
			fail(w, srv.ErrBadRequest{What: fmt.Sprintf("capacity must be in 1..%d", MaxFrameCapacity)})
			return
		}
		timeout := DefaultCaptureTimeout
		if req.TimeoutMs > 0 {
			timeout = time.Duration(req.TimeoutMs) * time.Millisecond
		}
		log.Debug("Handling capture request: channel: %d capacity: %d timeout: %s", channel, req.Capacity, timeout)

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		f, err := s.ctrl.Capture(ctx, channel, req.Capacity)
		if err != nil {
			fail(w, err)
			return
		}
		srv.WriteJSON(w, f)
	}
}
