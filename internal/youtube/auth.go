package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	ytv3 "google.golang.org/api/youtube/v3"

	"ytbpm/internal/utils"
)

const callbackPath = "/callback"

// ErrStateMismatch is returned when the OAuth callback carries the wrong state.
var ErrStateMismatch = errors.New("youtube: oauth state mismatch")

// Authenticator runs the browser OAuth login against a local callback server.
type Authenticator struct {
	Config *oauth2.Config
	Addr   string // listen address of the callback server
	State  string
	Out    io.Writer

	// OpenBrowser is called with the consent URL.
	OpenBrowser func(url string)

	// ServiceOptions are appended when building the logged-in client.
	ServiceOptions []option.ClientOption
}

type callbackResult struct {
	token *oauth2.Token
	err   error
}

// NewAuthenticator creates an Authenticator for the given OAuth client.
func NewAuthenticator(clientID, clientSecret, addr string, out io.Writer) (*Authenticator, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: youtube client ID and secret must be set in YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET", ErrMissingCredentials)
	}
	if out == nil {
		out = io.Discard
	}

	return &Authenticator{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       []string{ytv3.YoutubeReadonlyScope},
			Endpoint:     google.Endpoint,
		},
		Addr:  addr,
		State: utils.GenerateState(),
		Out:   out,
		OpenBrowser: func(url string) {
			utils.OpenBrowser(out, url)
		},
	}, nil
}

// Login waits for the user to complete the consent page and returns an
// authenticated client. It gives up when ctx is done.
func (a *Authenticator) Login(ctx context.Context) (*Client, error) {
	ln, err := net.Listen("tcp", a.Addr)
	if err != nil {
		return nil, fmt.Errorf("start callback server: %w", err)
	}

	config := *a.Config
	config.RedirectURL = "http://" + ln.Addr().String() + callbackPath

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		a.completeAuth(w, r, &config, results)
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := config.AuthCodeURL(a.State, oauth2.AccessTypeOffline)
	fmt.Fprintln(a.Out, "Please log in to YouTube by visiting the following page in your browser:", authURL)
	if a.OpenBrowser != nil {
		a.OpenBrowser(authURL)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		httpClient := config.Client(ctx, res.token)
		opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, a.ServiceOptions...)
		return NewClient(ctx, opts...)
	}
}

// completeAuth handles the OAuth2 callback. Only the first callback counts.
func (a *Authenticator) completeAuth(w http.ResponseWriter, r *http.Request, config *oauth2.Config, results chan<- callbackResult) {
	if st := r.FormValue("state"); st != a.State {
		http.NotFound(w, r)
		deliver(results, callbackResult{err: fmt.Errorf("%w: %s != %s", ErrStateMismatch, st, a.State)})
		return
	}

	token, err := config.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		http.Error(w, "Couldn't get token", http.StatusInternalServerError)
		deliver(results, callbackResult{err: fmt.Errorf("error exchanging code for token: %w", err)})
		return
	}

	fmt.Fprintf(w, "Login Completed! You can now close this window.")
	deliver(results, callbackResult{token: token})
}

func deliver(results chan<- callbackResult, res callbackResult) {
	select {
	case results <- res:
	default:
	}
}
