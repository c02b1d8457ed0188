package grpc_control

import (
	"context"
	"encoding/json"
	"fmt"

	"tariff-observer/src/analysis"
	"tariff-observer/src/dashboard"
	"tariff-observer/src/interfaces"
	"tariff-observer/src/logger"
	"tariff-observer/src/models"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ControlService implements DashboardControlServer on top of the dashboard
// service. Exchanger, when set, receives every dashboard rebuilt on demand.
type ControlService struct {
	Dashboard *dashboard.Service
	Exchanger interfaces.IDataExchanger
	Logger    *logger.Logger
}

// NewControlService creates a new instance of ControlService
func NewControlService(svc *dashboard.Service, exchanger interfaces.IDataExchanger, log *logger.Logger) *ControlService {
	return &ControlService{
		Dashboard: svc,
		Exchanger: exchanger,
		Logger:    log,
	}
}

// -----------------------------------------------------------------------------

// ListSources reports every registered source with the outcome of its last load.
func (s *ControlService) ListSources(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	last := make(map[string]models.MSourceStatus)
	if d := s.Dashboard.Latest(); d != nil {
		for _, st := range d.Sources {
			last[st.Name] = st
		}
	}

	var response []models.MSourceStatus
	for _, src := range s.Dashboard.Sources.GetAllSources() {
		cfg := src.SourceConfig()
		st, ok := last[cfg.Name]
		if !ok {
			st = models.MSourceStatus{Name: cfg.Name, Kind: cfg.Kind, Panel: cfg.Panel, Location: cfg.Location}
		}
		response = append(response, st)
	}

	return toStruct(map[string]interface{}{"sources": response})
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	d := s.Dashboard.Latest()
	if d == nil {
		return toStruct(map[string]interface{}{"built": false, "sources": len(s.Dashboard.Sources.GetAllSources())})
	}
	return toStruct(map[string]interface{}{
		"built":              true,
		"generated_at":       d.GeneratedAt,
		"panels":             d.PanelOrder,
		"diagnostics":        len(d.Diagnostics),
		"processing_metrics": d.Metrics,
	})
}

// -----------------------------------------------------------------------------

func (s *ControlService) Refresh(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	d, err := s.Dashboard.Build(ctx)
	if err != nil {
		s.Logger.Error("gRPC: refresh failed: %v", err)
		return nil, status.Errorf(codes.Internal, "refresh failed: %v", err)
	}
	summary := dashboard.Summarize(d, "UPDATE")
	if s.Exchanger != nil {
		s.Exchanger.Broadcast(&summary)
	}
	s.Logger.Info("gRPC: refresh built %d panels", d.Metrics.PanelsBuilt)
	return toStruct(summary)
}

// -----------------------------------------------------------------------------

// RemoveSource drops a source from the next builds. The configuration file
// is left untouched.
func (s *ControlService) RemoveSource(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := stringField(req, "name")
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	if err := s.Dashboard.Sources.RemoveSource(name); err != nil {
		return nil, status.Errorf(codes.NotFound, "%v", err)
	}
	return toStruct(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Removed source %s", name),
	})
}

// -----------------------------------------------------------------------------

// GetComparison takes "panel" and optional "from", "to" and "top".
func (s *ControlService) GetComparison(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	view, err := s.view(ctx, req)
	if err != nil {
		return nil, err
	}

	var from, to models.YearMonth
	if raw := stringField(req, "from"); raw != "" {
		if from, err = models.ParseYearMonth(raw); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid from: %v", err)
		}
	}
	if raw := stringField(req, "to"); raw != "" {
		if to, err = models.ParseYearMonth(raw); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid to: %v", err)
		}
	}

	result, err := dashboard.CompareView(s.Dashboard.Config.Analysis, view, from, to)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	n := s.Dashboard.Facade.TopN()
	if v, ok := req.GetFields()["top"]; ok {
		if n = int(v.GetNumberValue()); n < 0 {
			return nil, status.Error(codes.InvalidArgument, "top must not be negative")
		}
	}

	return toStruct(map[string]interface{}{
		"comparison": result,
		"movers": map[models.ChangeMetric]models.MTopMovers{
			models.MetricAbsolute: analysis.TopMovers(result, models.MetricAbsolute, n),
			models.MetricPercent:  analysis.TopMovers(result, models.MetricPercent, n),
		},
		"summary": analysis.SummarizeChanges(result),
	})
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetCorrelation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	view, err := s.view(ctx, req)
	if err != nil {
		return nil, err
	}
	if view.Correlation == nil {
		return nil, status.Errorf(codes.NotFound, "panel %s has no correlation matrix", view.Name)
	}
	return toStruct(view.Correlation)
}

// -----------------------------------------------------------------------------

func (s *ControlService) view(ctx context.Context, req *structpb.Struct) (*models.MPanelView, error) {
	name := stringField(req, "panel")
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "panel is required")
	}
	d, err := s.Dashboard.Current(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "dashboard unavailable: %v", err)
	}
	view := d.Panels[name]
	if view == nil || view.Panel == nil {
		return nil, status.Errorf(codes.NotFound, "unknown panel %s", name)
	}
	return view, nil
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

// toStruct goes through JSON so the model tags define the wire shape.
func toStruct(v interface{}) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}
