// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/vmware/govmomi/fault"
	"github.com/vmware/govmomi/session"
	"github.com/vmware/govmomi/session/keepalive"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/methods"
	"github.com/vmware/govmomi/vim25/soap"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	pkgcfg "github.com/vmware-tanzu/vm-reconciler/pkg/config"
	"github.com/vmware-tanzu/vm-reconciler/pkg/inventory"
	pkglog "github.com/vmware-tanzu/vm-reconciler/pkg/log"
)

// Client is a logged in vim25 client.
type Client struct {
	vimClient      *vim25.Client
	sessionManager *session.Manager
	config         pkgcfg.VCenter
}

// Idle time before a keepalive will be invoked.
const keepAliveIdleTime = 5 * time.Minute

// NewClient returns a new client that is logged into the vCenter server
// described by config.
func NewClient(ctx context.Context, config pkgcfg.VCenter) (*Client, error) {
	vimClient, sm, err := NewVimClient(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Client{
		vimClient:      vimClient,
		sessionManager: sm,
		config:         config,
	}, nil
}

// URL returns the SDK URL for the configuration. The port is omitted when it
// is zero so the default port for the scheme is used.
func URL(config pkgcfg.VCenter) (*url.URL, error) {
	host := config.Host
	if config.Port != 0 {
		host = net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	}
	scheme := "http"
	if config.SSL {
		scheme = "https"
	}

	u, err := soap.ParseURL(scheme + "://" + host)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", host, err)
	}
	if u == nil {
		return nil, fmt.Errorf("host is empty")
	}
	u.User = url.UserPassword(config.User, config.Password)
	return u, nil
}

// SoapKeepAliveHandlerFn returns a keepalive handler function suitable for use
// with the SOAP handler. In case the connectivity to VC is down long enough,
// the session expires. Further attempts to use the client yield
// NotAuthenticated fault. This handler ensures that we re-login the client in
// those scenarios.
func SoapKeepAliveHandlerFn(
	ctx context.Context,
	sc *soap.Client,
	sm *session.Manager,
	userInfo *url.Userinfo) func() error {

	log := pkglog.FromContextOrDefault(ctx).WithName("SoapKeepAliveHandlerFn")

	return func() error {
		ctx := context.Background()
		if _, err := methods.GetCurrentTime(ctx, sc); err != nil && IsNotAuthenticatedError(err) {
			log.Info("Re-authenticating vim client")
			if err = sm.Login(ctx, userInfo); err != nil {
				if IsInvalidLogin(err) {
					log.Error(err, "Invalid login in keepalive handler", "url", sc.URL())
					return err
				}
			}
		} else if err != nil {
			log.Error(err, "Error in vim25 client's keepalive handler", "url", sc.URL())
		}

		return nil
	}
}

// NewVimClient creates a new vim25 client which is configured to use a custom
// keepalive handler function.
func NewVimClient(
	ctx context.Context,
	config pkgcfg.VCenter) (*vim25.Client, *session.Manager, error) {

	log := pkglog.FromContextOrDefault(ctx).WithName("NewVimClient")

	log.Info("Creating new vim Client", "host", config.Host, "port", config.Port)
	soapURL, err := URL(config)
	if err != nil {
		return nil, nil, err
	}
	userInfo := soapURL.User

	soapClient := soap.NewClient(soapURL, config.Insecure)

	vimClient, err := vim25.NewClient(ctx, soapClient)
	if err != nil {
		return nil, nil, fmt.Errorf(
			"error creating a new vim client for url: %v: %w", soapURL.Host, err)
	}

	if err := vimClient.UseServiceVersion(); err != nil {
		return nil, nil, fmt.Errorf(
			"error setting vim client version for url: %v: %w", soapURL.Host, err)
	}

	sm := session.NewManager(vimClient)

	// Set a custom keepalive handler function
	vimClient.RoundTripper = keepalive.NewHandlerSOAP(
		soapClient,
		keepAliveIdleTime,
		SoapKeepAliveHandlerFn(ctx, soapClient, sm, userInfo))

	// Initial login. This will also start the keepalive.
	if err = sm.Login(ctx, userInfo); err != nil {
		return nil, nil, fmt.Errorf(
			"login failed for url: %v: %w", soapURL.Host, err)
	}

	return vimClient, sm, nil
}

func IsNotAuthenticatedError(err error) bool {
	return fault.Is(err, &vimtypes.NotAuthenticated{})
}

func IsInvalidLogin(err error) bool {
	return fault.Is(err, &vimtypes.InvalidLogin{})
}

func (c *Client) VimClient() *vim25.Client {
	return c.vimClient
}

func (c *Client) Config() pkgcfg.VCenter {
	return c.config
}

// About returns the information about the vCenter server.
func (c *Client) About() inventory.About {
	about := c.vimClient.ServiceContent.About
	return inventory.About{
		Name:         about.Name,
		Version:      about.Version,
		FullVersion:  about.FullName,
		InstanceUUID: about.InstanceUuid,
	}
}

func (c *Client) Valid() bool {
	if c == nil || c.vimClient == nil {
		return false
	}
	return c.VimClient().Valid()
}

func (c *Client) Logout(ctx context.Context) error {
	log := pkglog.FromContextOrDefault(ctx).WithName("Logout")

	clientURL := c.vimClient.URL()
	log.V(4).Info("vsphere client logging out from", "VC", clientURL.Host)

	if err := c.sessionManager.Logout(ctx); err != nil {
		log.Error(err, "Error logging out the vim25 session",
			"username", c.config.User,
			"host", clientURL.Host)
		return err
	}
	return nil
}
