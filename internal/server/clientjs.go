package server

import (
	"fmt"
	"net/http"
)

// handleClientJS serves the embeddable pf.js tracking script.
func (s *Server) handleClientJS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	serverURL := fmt.Sprintf("%s://%s", scheme, r.Host)

	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Write([]byte(GenerateClientScript(serverURL)))
}

// GenerateClientScript renders the pf.js script pointed at the given server.
// The script keeps the visitor id under prepflow_user_id, reports page views
// and CTA conversions to the beacon, and samples Core Web Vitals.
func GenerateClientScript(serverURL string) string {
	return fmt.Sprintf(`(function(){
  var S='%s';
  var T=document.currentScript&&document.currentScript.dataset.pfTest||'landing_page_variants';

  // Stable visitor id, surviving reloads like the rest of the client state.
  var uid;
  try{
    uid=localStorage.getItem('prepflow_user_id');
    if(!uid){
      uid='user_'+Math.random().toString(36).substr(2,9)+'_'+Date.now().toString(36);
      localStorage.setItem('prepflow_user_id',uid);
    }
  }catch(e){
    uid='user_'+Math.random().toString(36).substr(2,9)+'_'+Date.now().toString(36);
  }
  var sid='session_'+Date.now()+'_'+Math.random().toString(36).substr(2,9);

  function beacon(type,extra){
    var p=Object.assign({t:T,e:type,uid:uid,sid:sid,page:location.pathname},extra||{});
    try{
      navigator.sendBeacon(S+'/t',JSON.stringify(p));
    }catch(e){
      fetch(S+'/t',{method:'POST',body:JSON.stringify(p),keepalive:true}).catch(function(){});
    }
  }

  beacon('page_view');

  document.addEventListener('click',function(ev){
    var el=ev.target.closest('[data-pf-convert]');
    if(el)beacon('conversion',{v:parseFloat(el.dataset.pfValue||'1'),meta:{conversion_type:el.dataset.pfConvert}});
  });

  // Core Web Vitals, reported once the page settles.
  var m={};
  try{
    new PerformanceObserver(function(l){
      var es=l.getEntries();m.lcp=es[es.length-1].startTime;
    }).observe({type:'largest-contentful-paint',buffered:true});
    new PerformanceObserver(function(l){
      l.getEntries().forEach(function(e){if(!e.hadRecentInput)m.cls=(m.cls||0)+e.value;});
    }).observe({type:'layout-shift',buffered:true});
    new PerformanceObserver(function(l){
      var e=l.getEntries()[0];if(e)m.fid=e.processingStart-e.startTime;
    }).observe({type:'first-input',buffered:true});
  }catch(e){}

  addEventListener('visibilitychange',function(){
    if(document.visibilityState==='hidden'&&!m.sent){
      m.sent=true;
      var nav=performance.getEntriesByType('navigation')[0];
      navigator.sendBeacon(S+'/api/vitals',JSON.stringify({
        metrics:{lcp:m.lcp,cls:m.cls,fid:m.fid,ttfb:nav?nav.responseStart:0},
        page:location.pathname,pageType:'landing',uid:uid,sid:sid
      }));
    }
  });
})();`, serverURL)
}
