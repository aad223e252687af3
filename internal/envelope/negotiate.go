package envelope

// ShouldWrap decides whether resp must be wrapped for req. The client wins
// when its Accept is JSON; otherwise the response's Content-Type decides. A
// nil response (failure before anything was produced) never says JSON.
func ShouldWrap(req Request, resp *Response) bool {
	return serverSaysJSON(resp) || isSupportedMediaType(req.Accept)
}

func serverSaysJSON(resp *Response) bool {
	if resp == nil || resp.Header == nil {
		return false
	}
	return isSupportedMediaType(resp.Header.Get("Content-Type"))
}

// isSupportedMediaType compares without parsing parameters or wildcards, so
// "application/json; charset=utf-8" and "*/*" do not match.
func isSupportedMediaType(mediaType string) bool {
	return mediaType == JSONMediaType
}
