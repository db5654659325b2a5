package handlers

import "html/template"

// redirectDelay is how long the interstitial page shows the destination's
// favicon and title before the client-side redirect fires, in milliseconds.
const redirectDelay = 2500

var interstitialPage = template.Must(template.New("interstitial").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Link.Title}} | Redirecting...</title>
    <style>
        body {
            margin: 0;
            display: flex;
            flex-direction: column;
            justify-content: center;
            align-items: center;
            height: 100vh;
            background-color: #0f172a;
            color: #f8fafc;
            font-family: sans-serif;
        }
        .logo-wrapper {
            width: 120px;
            height: 120px;
            background: rgba(255, 255, 255, 0.1);
            border-radius: 50%;
            display: flex;
            justify-content: center;
            align-items: center;
            margin: 0 auto 2rem;
            border: 1px solid rgba(255, 255, 255, 0.1);
        }
        .site-icon {
            width: 60px;
            height: 60px;
            object-fit: contain;
        }
        .loader {
            width: 200px;
            height: 4px;
            background: rgba(255, 255, 255, 0.1);
            border-radius: 2px;
            margin: 2rem auto;
            position: relative;
            overflow: hidden;
        }
        .loader::after {
            content: '';
            position: absolute;
            top: 0;
            left: 0;
            height: 100%;
            width: 50%;
            background: #3b82f6;
            border-radius: 2px;
            animation: load 1.5s infinite ease-in-out;
        }
        @keyframes load {
            0% { left: -50%; }
            100% { left: 100%; }
        }
        .sub-text {
            color: #94a3b8;
            font-size: 0.9rem;
        }
    </style>
</head>
<body>
    <div style="text-align: center;">
        <div class="logo-wrapper">
            {{if .Link.Favicon}}<img src="{{.Link.Favicon}}" class="site-icon" alt="">{{end}}
        </div>
        <h1>Wait securely..</h1>
        <p class="sub-text">Redirecting to {{.Link.Title}}...</p>
        <div class="loader"></div>
    </div>
    <script>
        setTimeout(() => {
            window.location.href = {{.Link.OriginalURL}};
        }, {{.Delay}});
    </script>
</body>
</html>
`))

const notFoundPage = `<!DOCTYPE html>
<html lang="en">
<body style="background:#0f172a; color:white; display:flex; justify-content:center; align-items:center; height:100vh; font-family:sans-serif;">
    <h2>Link not found</h2>
</body>
</html>
`

const inactivePage = `<!DOCTYPE html>
<html lang="en">
<body style="background:#0f172a; color:white; display:flex; justify-content:center; align-items:center; height:100vh; font-family:sans-serif;">
    <h2>This link has been disabled</h2>
</body>
</html>
`

const errorPage = `<!DOCTYPE html>
<html lang="en">
<body style="background:#0f172a; color:white; display:flex; justify-content:center; align-items:center; height:100vh; font-family:sans-serif;">
    <h2>Something went wrong</h2>
</body>
</html>
`
