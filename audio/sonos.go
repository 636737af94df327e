package audio

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/callebjorkell/musicbox/card"
	"github.com/huin/goupnp"
	"github.com/huin/goupnp/soap"
	log "github.com/sirupsen/logrus"
)

// Sonos plays tracks on a Sonos zone player. Tracks are addressed through a
// base URL (typically a share or small HTTP server exposing the music
// directory), since the speaker fetches audio itself.
type Sonos struct {
	control  *service
	name     string
	musicDir string
	baseURL  string
}

// NewSonos discovers the zone player with the given zone name. Track paths
// under musicDir are rewritten onto baseURL before being handed to the
// speaker.
func NewSonos(zone, musicDir, baseURL string) (*Sonos, error) {
	devices, err := goupnp.DiscoverDevices("urn:schemas-upnp-org:device:ZonePlayer:1")
	if err != nil {
		return nil, fmt.Errorf("discover zone players: %w", err)
	}
	log.Debugf("Inspecting %v devices", len(devices))

	for _, dev := range devices {
		root, err := goupnp.DeviceByURL(dev.Location)
		if err != nil {
			log.Errorf("Could not retrieve %v, speaker went away?", dev.Location)
			continue
		}
		log.Debugf("Checking device: %v", root.Device.FriendlyName)

		props, err := getService(root, "DeviceProperties")
		if err != nil || props == nil {
			continue
		}
		out := struct {
			CurrentZoneName string
		}{}
		if err := props.Action("GetZoneAttributes", nil, &out); err != nil {
			continue
		}
		if out.CurrentZoneName != zone {
			continue
		}

		control, err := getService(root, "AVTransport")
		if err != nil {
			return nil, err
		}
		if control == nil {
			return nil, fmt.Errorf("zone %v has no AVTransport service", zone)
		}
		return &Sonos{
			control:  control,
			name:     zone,
			musicDir: musicDir,
			baseURL:  strings.TrimRight(baseURL, "/"),
		}, nil
	}
	return nil, fmt.Errorf("no speakers found for zone %v", zone)
}

func (s *Sonos) Name() string {
	return s.name
}

func (s *Sonos) Play(track card.Track) error {
	in := struct {
		InstanceID         string
		CurrentURI         string
		CurrentURIMetaData string
	}{
		"0",
		s.trackURI(track),
		"",
	}
	if err := s.control.Action("SetAVTransportURI", in, nil); err != nil {
		return fmt.Errorf("set transport URI on %v: %w", s.name, err)
	}

	play := struct {
		InstanceID string
		Speed      string
	}{"0", "1"}
	if err := s.control.Action("Play", play, nil); err != nil {
		return fmt.Errorf("play on %v: %w", s.name, err)
	}
	return nil
}

func (s *Sonos) Stop() error {
	in := struct {
		InstanceID string
	}{"0"}
	if err := s.control.Action("Stop", in, nil); err != nil {
		return fmt.Errorf("stop on %v: %w", s.name, err)
	}
	return nil
}

func (s *Sonos) WaitUntilDone() error {
	// the speaker plays on its own; there is nothing to wait for locally
	return nil
}

func (s *Sonos) trackURI(track card.Track) string {
	rel := strings.TrimPrefix(track.Path, s.musicDir)
	rel = strings.TrimPrefix(rel, "/")
	escaped := url.PathEscape(path.Clean(rel))
	// PathEscape also escapes the separators we want to keep
	escaped = strings.ReplaceAll(escaped, "%2F", "/")
	return s.baseURL + "/" + escaped
}

type service struct {
	*soap.SOAPClient
	namespace string
}

func (s *service) Action(name string, in interface{}, out interface{}) error {
	return s.SOAPClient.PerformAction(s.namespace, name, in, out)
}

func getService(dev *goupnp.RootDevice, id string) (*service, error) {
	namespace := fmt.Sprintf("urn:schemas-upnp-org:service:%v:1", id)
	found := dev.Device.FindService(namespace)
	if len(found) > 1 {
		return nil, fmt.Errorf("got %v services instead of the expected maximum of 1", len(found))
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &service{
		SOAPClient: found[0].NewSOAPClient(),
		namespace:  namespace,
	}, nil
}
