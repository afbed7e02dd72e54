package main

import (
	"flag"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charlesren/userconfig"
	"github.com/charlesren/ylog"
	"github.com/spf13/viper"

	"github.com/charlesren/switchconf/connection"
	"github.com/charlesren/switchconf/device"
	"github.com/charlesren/switchconf/snmp"
)

var (
	UserConfig *viper.Viper
	ConfPath   string
)

func init() {
	confPath := flag.String("c", "../conf/switchctl.yml", "ConfigPath")
	flag.Parse()
	ConfPath = *confPath

	initConfig()
}

func initConfig() {
	var err error
	if UserConfig, err = userconfig.NewUserConfig(userconfig.WithPath(ConfPath)); err != nil {
		fmt.Printf("####LOAD_CONFIG_ERROR: %v", err)
		os.Exit(-1)
	}
	initLog()
}

func initLog() {
	logLevel := UserConfig.GetInt("server.log.applog.loglevel")
	logPath := "../logs/switchctl.log"
	logger := ylog.NewYLog(
		ylog.WithLogFile(logPath),
		ylog.WithMaxAge(3),
		ylog.WithMaxSize(100),
		ylog.WithMaxBackups(3),
		ylog.WithLevel(logLevel),
	)
	ylog.InitLogger(logger)
}

func layoutFromConfig() device.PortLayout {
	layout := device.DefaultLayout()
	if n := UserConfig.GetInt("switch.portsperunit"); n > 0 {
		layout.PortsPerUnit = n
	}
	if n := UserConfig.GetInt("switch.vlanifindexoffset"); n > 0 {
		layout.VLANIfIndexOffset = n
	}
	return layout
}

func openSwitch() (*device.Switch, func()) {
	host := UserConfig.GetString("switch.host")
	if host == "" {
		fail("switch.host not configured")
	}

	session, err := connection.DialSession(connection.ConnectionConfig{
		Host:     host,
		Port:     UserConfig.GetInt("switch.sshport"),
		Username: UserConfig.GetString("switch.username"),
		Password: UserConfig.GetString("switch.password"),
		Platform: connection.PlatformProcurve,
		Timeout:  30 * time.Second,
	})
	if err != nil {
		fail("ssh session: %v", err)
	}
	ylog.Infof("Main", "session open, device hostname %q", session.Hostname())

	client, err := snmp.NewClient(snmp.Config{
		Host:      host,
		Port:      uint16(UserConfig.GetInt("switch.snmpport")),
		Community: UserConfig.GetString("switch.community"),
	})
	if err != nil {
		session.Close()
		fail("snmp client: %v", err)
	}

	sw := device.NewSwitch(session.Hostname(), session, client, device.Options{
		Layout: layoutFromConfig(),
	})
	return sw, func() {
		session.Close()
		client.Close()
	}
}

func main() {
	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	sw, closeAll := openSwitch()
	defer closeAll()

	var err error
	switch args[0] {
	case "vlans":
		err = showVLANs(sw)
	case "routes":
		err = showRoutes(sw)
	case "route":
		err = routeCmd(sw, args[1:])
	case "vlan":
		err = vlanCmd(sw, args[1:])
	case "port":
		err = portCmd(sw, args[1:])
	case "run":
		err = runCmd(sw, args[1:])
	default:
		usage()
	}

	if device.IsCacheInconsistency(err) {
		ylog.Warnf("Main", "device state already matched: %v", err)
		fmt.Printf("warning: %v\n", err)
		return
	}
	if err != nil {
		fail("%v", err)
	}
}

func showVLANs(sw *device.Switch) error {
	vlans, err := sw.CLI().VLANs()
	if err != nil {
		return err
	}
	for _, vlan := range vlans {
		fmt.Printf("vlan %d %q\n", vlan.VID, vlan.Name)
		if len(vlan.Untagged) > 0 {
			fmt.Printf("   untagged %s\n", strings.Join(vlan.Untagged, ","))
		}
		if len(vlan.Tagged) > 0 {
			fmt.Printf("   tagged %s\n", strings.Join(vlan.Tagged, ","))
		}
	}
	return nil
}

func showRoutes(sw *device.Switch) error {
	routes, err := sw.CLI().StaticRoutes()
	if err != nil {
		return err
	}
	for _, route := range routes {
		fmt.Println(route)
	}
	return nil
}

func routeCmd(sw *device.Switch, args []string) error {
	if len(args) != 3 {
		usage()
	}
	route, err := parseRoute(args[1], args[2])
	if err != nil {
		return err
	}
	switch args[0] {
	case "add":
		return sw.CLI().AddStaticRoute(route)
	case "del":
		return sw.CLI().RemoveStaticRoute(route)
	}
	usage()
	return nil
}

func parseRoute(dst, gw string) (device.Route, error) {
	prefix, err := netip.ParsePrefix(dst)
	if err != nil {
		return device.Route{}, fmt.Errorf("bad destination %q: %w", dst, err)
	}
	gateway, err := netip.ParseAddr(gw)
	if err != nil {
		return device.Route{}, fmt.Errorf("bad gateway %q: %w", gw, err)
	}
	if prefix.Addr().Is4() {
		return device.NewIPv4Route(prefix, gateway)
	}
	return device.NewIPv6Route(prefix, gateway)
}

func vlanCmd(sw *device.Switch, args []string) error {
	if len(args) < 2 {
		usage()
	}
	vid, err := strconv.Atoi(args[0])
	if err != nil {
		fail("bad vlan id %q", args[0])
	}
	vlan, err := sw.VLAN(vid)
	if err != nil {
		return err
	}
	switch args[1] {
	case "name":
		if len(args) != 3 {
			usage()
		}
		return vlan.SetName(args[2])
	case "ports":
		tagged, err := vlan.TaggedPorts()
		if err != nil {
			return err
		}
		untagged, err := vlan.UntaggedPorts()
		if err != nil {
			return err
		}
		fmt.Printf("untagged %s\ntagged %s\n", strings.Join(untagged, ","), strings.Join(tagged, ","))
		return nil
	case "addrs":
		v4, err := vlan.IPv4Addresses()
		if err != nil {
			return err
		}
		v6, err := vlan.IPv6Addresses()
		if err != nil {
			return err
		}
		for _, prefix := range append(v4, v6...) {
			fmt.Println(prefix)
		}
		return nil
	case "add-addr", "del-addr":
		if len(args) != 3 {
			usage()
		}
		prefix, err := netip.ParsePrefix(args[2])
		if err != nil {
			return fmt.Errorf("bad address %q: %w", args[2], err)
		}
		add := args[1] == "add-addr"
		if prefix.Addr().Is4() {
			if add {
				return vlan.AddIPv4Address(prefix)
			}
			return vlan.RemoveIPv4Address(prefix)
		}
		if add {
			return vlan.AddIPv6Address(prefix)
		}
		return vlan.RemoveIPv6Address(prefix)
	case "tag":
		if len(args) != 3 {
			usage()
		}
		return vlan.AddTaggedPort(args[2])
	case "untag":
		if len(args) != 3 {
			usage()
		}
		return vlan.AddUntaggedPort(args[2])
	}
	usage()
	return nil
}

func portCmd(sw *device.Switch, args []string) error {
	if len(args) < 1 {
		usage()
	}
	port, err := sw.Port(args[0])
	if err != nil {
		return err
	}
	if len(args) == 1 {
		enabled, err := port.Enabled()
		if err != nil {
			return err
		}
		operational, err := port.Operational()
		if err != nil {
			return err
		}
		name, err := port.Name()
		if err != nil {
			return err
		}
		pvid, err := port.UntaggedVLAN()
		if err != nil {
			return err
		}
		fmt.Printf("port %s name=%q enabled=%v link=%v pvid=%d\n", port.ID, name, enabled, operational, pvid)
		return nil
	}
	switch args[1] {
	case "enable":
		return port.SetEnabled(true)
	case "disable":
		return port.SetEnabled(false)
	case "name":
		if len(args) != 3 {
			usage()
		}
		return port.SetName(args[2])
	}
	usage()
	return nil
}

func runCmd(sw *device.Switch, args []string) error {
	if len(args) == 0 {
		usage()
	}
	out, err := sw.ExecuteCommand(strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: switchctl [-c config] command

  vlans                                 list vlan blocks of the running config
  routes                                list static routes
  route add|del <prefix> <gateway>      manage a static route
  vlan <vid> name <name>                set the vlan name
  vlan <vid> ports                      list tagged/untagged member ports
  vlan <vid> addrs                      list interface addresses
  vlan <vid> add-addr|del-addr <prefix> manage an interface address
  vlan <vid> tag|untag <port>           add the vlan to a port
  port <id>                             show port state
  port <id> enable|disable              set the admin state
  port <id> name <name>                 set the friendly name
  run <command...>                      run a raw command
`)
	os.Exit(2)
}

func fail(format string, args ...interface{}) {
	ylog.Errorf("Main", format, args...)
	fmt.Fprintf(os.Stderr, "switchctl: "+format+"\n", args...)
	os.Exit(1)
}
