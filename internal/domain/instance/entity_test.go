package instance

import "testing"

func TestInstance_Eligible(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{name: "healthy is eligible", state: StateHealthy, want: true},
		{name: "unhealthy is not eligible", state: StateUnhealthy, want: false},
		{name: "draining is not eligible", state: StateDraining, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := &Instance{State: tt.state}
			if got := i.Eligible(); got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInstance_BaseURL(t *testing.T) {
	i := &Instance{Host: "10.0.0.5", Port: 8080, Protocol: ProtocolHTTPS}
	want := "https://10.0.0.5:8080"
	if got := i.BaseURL(); got != want {
		t.Errorf("BaseURL() = %q, want %q", got, want)
	}
}

func validInstance() Instance {
	return Instance{
		ServiceName: "orders",
		InstanceID:  "orders-1",
		Host:        "10.0.0.5",
		Port:        8080,
		Protocol:    ProtocolHTTP,
		Weight:      1,
	}
}

func TestInstance_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(i *Instance)
		wantErr error
	}{
		{name: "valid instance", mutate: func(i *Instance) {}, wantErr: nil},
		{name: "empty service name", mutate: func(i *Instance) { i.ServiceName = "" }, wantErr: ErrEmptyServiceName},
		{name: "empty instance id", mutate: func(i *Instance) { i.InstanceID = "" }, wantErr: ErrEmptyInstanceID},
		{name: "empty host", mutate: func(i *Instance) { i.Host = "" }, wantErr: ErrEmptyHost},
		{name: "invalid port", mutate: func(i *Instance) { i.Port = 0 }, wantErr: ErrInvalidPort},
		{name: "port too large", mutate: func(i *Instance) { i.Port = 70000 }, wantErr: ErrInvalidPort},
		{name: "negative weight", mutate: func(i *Instance) { i.Weight = -1 }, wantErr: ErrInvalidWeight},
		{name: "invalid protocol", mutate: func(i *Instance) { i.Protocol = "ftp" }, wantErr: ErrInvalidProtocol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := validInstance()
			tt.mutate(&i)
			if err := i.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
